package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwellblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockPostRepository is a mock implementation of PostRepository
type mockPostRepository struct {
	post            *models.Post
	posts           []models.Post
	tags            []models.Tag
	total           int
	err             error
	getBySlugErr    error
	incrementErr    error
	createdPost     *models.Post
	createdTags     []models.Tag
	updatedReq      *models.UpdatePostRequest
	updatedSlug     string
	deletedID       int
	viewIncremented bool
}

func (m *mockPostRepository) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if m.err != nil {
		return m.err
	}
	post.ID = 10
	m.createdPost = post
	m.createdTags = tags
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int) (*models.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.post == nil {
		return nil, errors.New("post not found")
	}
	return m.post, nil
}

func (m *mockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.getBySlugErr != nil {
		return nil, m.getBySlugErr
	}
	if m.post == nil {
		return nil, errors.New("post not found")
	}
	return m.post, nil
}

func (m *mockPostRepository) GetTags(ctx context.Context, postID int) ([]models.Tag, error) {
	return m.tags, nil
}

func (m *mockPostRepository) List(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.posts, nil
}

func (m *mockPostRepository) CountList(ctx context.Context, filter models.PostFilter) (int, error) {
	return m.total, nil
}

func (m *mockPostRepository) Update(ctx context.Context, postID int, req *models.UpdatePostRequest, slug string, tags []models.Tag) error {
	m.updatedReq = req
	m.updatedSlug = slug
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int) error {
	m.deletedID = postID
	return nil
}

func (m *mockPostRepository) IncrementViewCount(ctx context.Context, postID int) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	m.viewIncremented = true
	return nil
}

// mockCommentRepository is a mock implementation of PostCommentRepository
type mockCommentRepository struct {
	comments []models.Comment
	err      error
	created  *models.Comment
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.err != nil {
		return m.err
	}
	comment.ID = 5
	m.created = comment
	return nil
}

func (m *mockCommentRepository) ListApprovedByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.comments, nil
}

// mockCategoryRepository is a mock implementation of CategoryRepository,
// shared with the taxonomy service tests
type mockCategoryRepository struct {
	category   *models.Category
	categories []models.Category
	exists     bool
	err        error
	created    *models.Category
	setActive  *bool
	updated    bool
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.err != nil {
		return m.err
	}
	category.ID = 2
	m.created = category
	return nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, categoryID int) (*models.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.category == nil {
		return nil, errors.New("category not found")
	}
	return m.category, nil
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if m.category == nil {
		return nil, errors.New("category not found")
	}
	return m.category, nil
}

func (m *mockCategoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return m.exists, nil
}

func (m *mockCategoryRepository) ListWithPostCounts(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, categoryID int, name, slug, description string) error {
	m.updated = true
	return nil
}

func (m *mockCategoryRepository) SetActive(ctx context.Context, categoryID int, active bool) error {
	m.setActive = &active
	return nil
}

func newTestPostService(postRepo *mockPostRepository, commentRepo *mockCommentRepository,
	categoryRepo *mockCategoryRepository) *postService {
	logger, _ := zap.NewDevelopment()
	return NewPostService(postRepo, commentRepo, categoryRepo, logger)
}

func activeCategory() *models.Category {
	return &models.Category{ID: 2, Name: "Go", Slug: "go", IsActive: true}
}

func TestPostService_CreatePost(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.CreatePostRequest
		postRepo      *mockPostRepository
		categoryRepo  *mockCategoryRepository
		expectedError bool
		errorContains string
		checkPost     func(*testing.T, *models.Post, *mockPostRepository)
	}{
		{
			name: "published post gets a timestamp and slug",
			req: &models.CreatePostRequest{
				Title:      "My First Post!",
				Content:    "Hello world",
				CategoryID: 2,
				Tags:       []string{"Go", "go", "Web Dev"},
				Publish:    true,
			},
			postRepo:     &mockPostRepository{getBySlugErr: errors.New("post not found")},
			categoryRepo: &mockCategoryRepository{category: activeCategory()},
			checkPost: func(t *testing.T, post *models.Post, repo *mockPostRepository) {
				assert.Equal(t, "my-first-post", post.Slug)
				assert.True(t, post.IsPublished)
				require.NotNil(t, post.PublishedAt)
				// Duplicate tag slugs collapse into one
				require.Len(t, repo.createdTags, 2)
				assert.Equal(t, "go", repo.createdTags[0].Slug)
				assert.Equal(t, "web-dev", repo.createdTags[1].Slug)
			},
		},
		{
			name: "draft has no published timestamp",
			req: &models.CreatePostRequest{
				Title:      "Draft",
				Content:    "wip",
				CategoryID: 2,
			},
			postRepo:     &mockPostRepository{getBySlugErr: errors.New("post not found")},
			categoryRepo: &mockCategoryRepository{category: activeCategory()},
			checkPost: func(t *testing.T, post *models.Post, repo *mockPostRepository) {
				assert.False(t, post.IsPublished)
				assert.Nil(t, post.PublishedAt)
			},
		},
		{
			name: "slug collision gets a suffix",
			req: &models.CreatePostRequest{
				Title:      "My First Post",
				Content:    "Hello again",
				CategoryID: 2,
			},
			postRepo:     &mockPostRepository{post: &models.Post{ID: 1, Slug: "my-first-post"}},
			categoryRepo: &mockCategoryRepository{category: activeCategory()},
			checkPost: func(t *testing.T, post *models.Post, repo *mockPostRepository) {
				assert.NotEqual(t, "my-first-post", post.Slug)
				assert.Contains(t, post.Slug, "my-first-post-")
			},
		},
		{
			name:          "empty title",
			req:           &models.CreatePostRequest{Title: "  ", Content: "x", CategoryID: 2},
			postRepo:      &mockPostRepository{},
			categoryRepo:  &mockCategoryRepository{category: activeCategory()},
			expectedError: true,
			errorContains: "title cannot be empty",
		},
		{
			name:          "unknown category",
			req:           &models.CreatePostRequest{Title: "Post", Content: "x", CategoryID: 99},
			postRepo:      &mockPostRepository{},
			categoryRepo:  &mockCategoryRepository{},
			expectedError: true,
			errorContains: "category not found",
		},
		{
			name: "inactive category",
			req:  &models.CreatePostRequest{Title: "Post", Content: "x", CategoryID: 2},
			postRepo: &mockPostRepository{
				getBySlugErr: errors.New("post not found"),
			},
			categoryRepo: &mockCategoryRepository{
				category: &models.Category{ID: 2, IsActive: false},
			},
			expectedError: true,
			errorContains: "not active",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPostService(tt.postRepo, &mockCommentRepository{}, tt.categoryRepo)

			post, err := svc.CreatePost(context.Background(), 1, tt.req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, post)
			} else {
				require.NoError(t, err)
				require.NotNil(t, post)
				tt.checkPost(t, post, tt.postRepo)
			}
		})
	}
}

func TestPostService_GetPost(t *testing.T) {
	publishedAt := time.Now().Add(-time.Hour)

	publishedPost := func() *models.Post {
		return &models.Post{
			ID:          10,
			Title:       "First",
			Slug:        "first",
			IsPublished: true,
			ViewCount:   41,
			AuthorID:    1,
			PublishedAt: &publishedAt,
		}
	}

	t.Run("published post increments views and loads comments", func(t *testing.T) {
		postRepo := &mockPostRepository{
			post: publishedPost(),
			tags: []models.Tag{{ID: 7, Name: "golang", Slug: "golang"}},
		}
		commentRepo := &mockCommentRepository{comments: []models.Comment{{ID: 5, Content: "Nice"}}}
		svc := newTestPostService(postRepo, commentRepo, &mockCategoryRepository{})

		post, comments, err := svc.GetPost(context.Background(), "first", 2, models.RoleUser)

		require.NoError(t, err)
		assert.True(t, postRepo.viewIncremented)
		assert.Equal(t, 42, post.ViewCount)
		assert.Len(t, post.Tags, 1)
		assert.Len(t, comments, 1)
	})

	t.Run("draft hidden from other users", func(t *testing.T) {
		draft := publishedPost()
		draft.IsPublished = false
		postRepo := &mockPostRepository{post: draft}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		_, _, err := svc.GetPost(context.Background(), "first", 2, models.RoleUser)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "post not found")
	})

	t.Run("draft visible to its author", func(t *testing.T) {
		draft := publishedPost()
		draft.IsPublished = false
		postRepo := &mockPostRepository{post: draft}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		post, _, err := svc.GetPost(context.Background(), "first", 1, models.RoleUser)

		require.NoError(t, err)
		assert.False(t, postRepo.viewIncremented)
		assert.Equal(t, 10, post.ID)
	})

	t.Run("draft visible to admins", func(t *testing.T) {
		draft := publishedPost()
		draft.IsPublished = false
		postRepo := &mockPostRepository{post: draft}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		_, _, err := svc.GetPost(context.Background(), "first", 99, models.RoleAdmin)

		require.NoError(t, err)
	})

	t.Run("numeric path resolves by id when no slug matches", func(t *testing.T) {
		postRepo := &mockPostRepository{
			post:         publishedPost(),
			getBySlugErr: errors.New("post not found"),
		}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		post, _, err := svc.GetPost(context.Background(), "10", 2, models.RoleUser)

		require.NoError(t, err)
		assert.Equal(t, 10, post.ID)
		assert.True(t, postRepo.viewIncremented)
	})

	t.Run("numeric slug wins over id", func(t *testing.T) {
		bySlug := publishedPost()
		bySlug.ID = 2024
		bySlug.Slug = "2024"
		postRepo := &mockPostRepository{post: bySlug}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		post, _, err := svc.GetPost(context.Background(), "2024", 2, models.RoleUser)

		require.NoError(t, err)
		assert.Equal(t, 2024, post.ID)
	})

	t.Run("non-numeric miss stays not found", func(t *testing.T) {
		postRepo := &mockPostRepository{getBySlugErr: errors.New("post not found")}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		_, _, err := svc.GetPost(context.Background(), "no-such-post", 2, models.RoleUser)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "post not found")
	})

	t.Run("view count failure does not fail the read", func(t *testing.T) {
		postRepo := &mockPostRepository{post: publishedPost(), incrementErr: errors.New("database error")}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		post, _, err := svc.GetPost(context.Background(), "first", 2, models.RoleUser)

		require.NoError(t, err)
		assert.Equal(t, 41, post.ViewCount)
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	ownPost := func() *models.Post {
		return &models.Post{ID: 10, AuthorID: 1, Slug: "first"}
	}
	title := "Renamed"

	t.Run("author can edit", func(t *testing.T) {
		postRepo := &mockPostRepository{post: ownPost(), getBySlugErr: errors.New("post not found")}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.UpdatePost(context.Background(), 10, 1, models.RoleUser, &models.UpdatePostRequest{Title: &title})

		require.NoError(t, err)
		assert.Equal(t, "renamed", postRepo.updatedSlug)
	})

	t.Run("admin can edit someone else's post", func(t *testing.T) {
		postRepo := &mockPostRepository{post: ownPost(), getBySlugErr: errors.New("post not found")}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.UpdatePost(context.Background(), 10, 99, models.RoleAdmin, &models.UpdatePostRequest{Title: &title})

		require.NoError(t, err)
	})

	t.Run("other users get forbidden", func(t *testing.T) {
		postRepo := &mockPostRepository{post: ownPost()}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.UpdatePost(context.Background(), 10, 2, models.RoleUser, &models.UpdatePostRequest{Title: &title})

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("category change validates the category", func(t *testing.T) {
		categoryID := 99
		postRepo := &mockPostRepository{post: ownPost()}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.UpdatePost(context.Background(), 10, 1, models.RoleUser, &models.UpdatePostRequest{CategoryID: &categoryID})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "category not found")
	})
}

func TestPostService_DeletePost(t *testing.T) {
	ownPost := &models.Post{ID: 10, AuthorID: 1}

	t.Run("author can delete", func(t *testing.T) {
		postRepo := &mockPostRepository{post: ownPost}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.DeletePost(context.Background(), 10, 1, models.RoleUser)

		require.NoError(t, err)
		assert.Equal(t, 10, postRepo.deletedID)
	})

	t.Run("other users get forbidden", func(t *testing.T) {
		postRepo := &mockPostRepository{post: ownPost}
		svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

		err := svc.DeletePost(context.Background(), 10, 2, models.RoleUser)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPostService_AddComment(t *testing.T) {
	publishedPost := &models.Post{ID: 10, IsPublished: true}

	t.Run("comment starts unapproved", func(t *testing.T) {
		postRepo := &mockPostRepository{post: publishedPost}
		commentRepo := &mockCommentRepository{}
		svc := newTestPostService(postRepo, commentRepo, &mockCategoryRepository{})

		comment, err := svc.AddComment(context.Background(), 10, 2, &models.CreateCommentRequest{Content: "  Nice post  "})

		require.NoError(t, err)
		assert.Equal(t, "Nice post", comment.Content)
		assert.False(t, comment.IsApproved)
		assert.Equal(t, 2, comment.AuthorID)
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		svc := newTestPostService(&mockPostRepository{post: publishedPost}, &mockCommentRepository{}, &mockCategoryRepository{})

		_, err := svc.AddComment(context.Background(), 10, 2, &models.CreateCommentRequest{Content: "   "})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("draft cannot be commented", func(t *testing.T) {
		draft := &models.Post{ID: 11, IsPublished: false}
		svc := newTestPostService(&mockPostRepository{post: draft}, &mockCommentRepository{}, &mockCategoryRepository{})

		_, err := svc.AddComment(context.Background(), 11, 2, &models.CreateCommentRequest{Content: "hi"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "post not found")
	})
}

func TestPostService_ListPosts(t *testing.T) {
	postRepo := &mockPostRepository{
		posts: []models.Post{{ID: 10, Title: "First"}, {ID: 11, Title: "Second"}},
		total: 25,
	}
	svc := newTestPostService(postRepo, &mockCommentRepository{}, &mockCategoryRepository{})

	posts, pagination, err := svc.ListPosts(context.Background(), 2, 10, models.PostFilter{})

	require.NoError(t, err)
	assert.Len(t, posts, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
	assert.True(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}
