package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwellblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRowColumns matches the column order of postColumns
var postRowColumns = []string{
	"id", "title", "slug", "excerpt", "content", "is_published", "is_featured",
	"view_count", "author_id", "category_id", "created_at", "updated_at", "published_at",
	"username", "name",
}

// setupPostTestRepository creates a post repository with a mock database
func setupPostTestRepository(t *testing.T) (*postRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPostRepository_Create(t *testing.T) {
	publishedAt := time.Now().UTC()

	tests := []struct {
		name          string
		post          *models.Post
		tags          []models.Tag
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "tag lookup error aborts the transaction",
			post: &models.Post{
				Title:       "First Post",
				Slug:        "first-post",
				Content:     "Hello world",
				IsPublished: true,
				AuthorID:    1,
				CategoryID:  2,
				PublishedAt: &publishedAt,
			},
			tags: []models.Tag{{Name: "golang", Slug: "golang"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO posts`).
					WithArgs("First Post", "first-post", "", "Hello world", true, false, 1, 2, &publishedAt).
					WillReturnResult(sqlmock.NewResult(10, 1))
				mock.ExpectQuery(`SELECT id FROM tags WHERE slug = \?`).
					WithArgs("golang").
					WillReturnError(errors.New("sql: no rows in result set"))
				mock.ExpectRollback()
			},
			expectedError: true,
		},
		{
			name: "success with existing tag",
			post: &models.Post{
				Title:      "Draft",
				Slug:       "draft",
				Content:    "wip",
				AuthorID:   1,
				CategoryID: 2,
			},
			tags: []models.Tag{{Name: "golang", Slug: "golang"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO posts`).
					WithArgs("Draft", "draft", "", "wip", false, false, 1, 2, nil).
					WillReturnResult(sqlmock.NewResult(11, 1))
				mock.ExpectQuery(`SELECT id FROM tags WHERE slug = \?`).
					WithArgs("golang").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectExec(`INSERT INTO post_tags`).
					WithArgs(11, 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectedError: false,
			expectedID:    11,
		},
		{
			name: "database error on insert",
			post: &models.Post{
				Title:      "Broken",
				Slug:       "broken",
				Content:    "x",
				AuthorID:   1,
				CategoryID: 2,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO posts`).
					WithArgs("Broken", "broken", "", "x", false, false, 1, 2, nil).
					WillReturnError(errors.New("database error"))
				mock.ExpectRollback()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.post, tt.tags)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.post.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_GetBySlug(t *testing.T) {
	createdAt := time.Now().Add(-48 * time.Hour)
	publishedAt := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name          string
		slug          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		checkPost     func(*testing.T, *models.Post)
	}{
		{
			name: "published post",
			slug: "first-post",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(postRowColumns).
					AddRow(10, "First Post", "first-post", "intro", "Hello world", true, false,
						42, 1, 2, createdAt, createdAt, publishedAt, "alice", "Go")
				mock.ExpectQuery(`SELECT p\.id, p\.title, p\.slug`).
					WithArgs("first-post").
					WillReturnRows(rows)
			},
			checkPost: func(t *testing.T, post *models.Post) {
				assert.Equal(t, 10, post.ID)
				assert.Equal(t, "alice", post.AuthorUsername)
				assert.Equal(t, "Go", post.CategoryName)
				assert.Equal(t, 42, post.ViewCount)
				require.NotNil(t, post.PublishedAt)
			},
		},
		{
			name: "draft has no published_at",
			slug: "draft",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(postRowColumns).
					AddRow(11, "Draft", "draft", "", "wip", false, false,
						0, 1, 2, createdAt, createdAt, nil, "alice", "Go")
				mock.ExpectQuery(`SELECT p\.id, p\.title, p\.slug`).
					WithArgs("draft").
					WillReturnRows(rows)
			},
			checkPost: func(t *testing.T, post *models.Post) {
				assert.False(t, post.IsPublished)
				assert.Nil(t, post.PublishedAt)
			},
		},
		{
			name: "not found",
			slug: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT p\.id, p\.title, p\.slug`).
					WithArgs("missing").
					WillReturnRows(sqlmock.NewRows(postRowColumns))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			post, err := repo.GetBySlug(context.Background(), tt.slug)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, post)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, post)
				tt.checkPost(t, post)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_List(t *testing.T) {
	createdAt := time.Now()
	categoryID := 2

	tests := []struct {
		name          string
		page          int
		perPage       int
		filter        models.PostFilter
		setupMock     func(sqlmock.Sqlmock)
		expectedLen   int
		expectedError bool
	}{
		{
			name:    "published only",
			page:    1,
			perPage: 10,
			filter:  models.PostFilter{PublishedOnly: true},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(postRowColumns).
					AddRow(10, "First", "first", "", "a", true, false, 1, 1, 2, createdAt, createdAt, createdAt, "alice", "Go").
					AddRow(11, "Second", "second", "", "b", true, true, 2, 1, 2, createdAt, createdAt, createdAt, "alice", "Go")
				mock.ExpectQuery(`WHERE p\.is_published = TRUE ORDER BY p\.created_at DESC`).
					WithArgs(10, 0).
					WillReturnRows(rows)
			},
			expectedLen: 2,
		},
		{
			name:    "category and search filter",
			page:    3,
			perPage: 5,
			filter:  models.PostFilter{PublishedOnly: true, CategoryID: &categoryID, Search: "go"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE p\.is_published = TRUE AND p\.category_id = \? AND \(p\.title LIKE \? OR p\.content LIKE \?\)`).
					WithArgs(2, "%go%", "%go%", 5, 10).
					WillReturnRows(sqlmock.NewRows(postRowColumns))
			},
			expectedLen: 0,
		},
		{
			name:    "database error",
			page:    1,
			perPage: 10,
			filter:  models.PostFilter{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY p\.created_at DESC`).
					WithArgs(10, 0).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			posts, err := repo.List(context.Background(), tt.page, tt.perPage, tt.filter)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, posts, tt.expectedLen)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_Update(t *testing.T) {
	title := "New Title"
	content := "new content"

	tests := []struct {
		name          string
		postID        int
		req           *models.UpdatePostRequest
		slug          string
		tags          []models.Tag
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name:   "update title and content",
			postID: 10,
			req:    &models.UpdatePostRequest{Title: &title, Content: &content},
			slug:   "new-title",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE posts SET title = \?, slug = \?, content = \? WHERE id = \?`).
					WithArgs("New Title", "new-title", "new content", 10).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:   "replace tags",
			postID: 10,
			req:    &models.UpdatePostRequest{Tags: []string{"golang"}},
			tags:   []models.Tag{{Name: "golang", Slug: "golang"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM post_tags WHERE post_id = \?`).
					WithArgs(10).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectQuery(`SELECT id FROM tags WHERE slug = \?`).
					WithArgs("golang").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectExec(`INSERT INTO post_tags`).
					WithArgs(10, 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:   "post not found",
			postID: 99,
			req:    &models.UpdatePostRequest{Title: &title},
			slug:   "new-title",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE posts SET title = \?, slug = \? WHERE id = \?`).
					WithArgs("New Title", "new-title", 99).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedError: "post not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), tt.postID, tt.req, tt.slug, tt.tags)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE posts SET view_count = view_count \+ 1 WHERE id = \?`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementViewCount(context.Background(), 10)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_SetPublished(t *testing.T) {
	publishedAt := time.Now().UTC()

	tests := []struct {
		name          string
		postID        int
		published     bool
		publishedAt   *time.Time
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name:        "first publish stamps published_at",
			postID:      10,
			published:   true,
			publishedAt: &publishedAt,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE posts SET is_published = \?, published_at = \? WHERE id = \?`).
					WithArgs(true, publishedAt, 10).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "unpublish keeps published_at",
			postID:    10,
			published: false,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE posts SET is_published = \? WHERE id = \?`).
					WithArgs(false, 10).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:      "post not found",
			postID:    99,
			published: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE posts SET is_published = \? WHERE id = \?`).
					WithArgs(true, 99).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: "post not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.SetPublished(context.Background(), tt.postID, tt.published, tt.publishedAt)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_GetTags(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name", "slug"}).
		AddRow(7, "golang", "golang").
		AddRow(8, "web", "web")
	mock.ExpectQuery(`SELECT t\.id, t\.name, t\.slug`).
		WithArgs(10).
		WillReturnRows(rows)

	tags, err := repo.GetTags(context.Background(), 10)

	assert.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}
