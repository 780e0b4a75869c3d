package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwellblog/backend/internal/models"
	"go.uber.org/zap"
)

// PostRepository wraps data access for the posts table
type PostRepository interface {
	// Create inserts a new post with its tags and fills in its ID.
	Create(ctx context.Context, post *models.Post, tags []models.Tag) error
	// GetByID retrieves a post by ID.
	GetByID(ctx context.Context, postID int) (*models.Post, error)
	// GetBySlug retrieves a post by slug.
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	// GetTags retrieves the tags attached to a post.
	GetTags(ctx context.Context, postID int) ([]models.Tag, error)
	// List retrieves a page of posts matching the filter.
	List(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, error)
	// CountList returns the number of posts matching the filter.
	CountList(ctx context.Context, filter models.PostFilter) (int, error)
	// Update applies a partial update to a post, replacing tags when provided.
	Update(ctx context.Context, postID int, req *models.UpdatePostRequest, slug string, tags []models.Tag) error
	// Delete removes a post.
	Delete(ctx context.Context, postID int) error
	// IncrementViewCount bumps the post's view counter.
	IncrementViewCount(ctx context.Context, postID int) error
}

// PostCommentRepository wraps comment access needed when rendering a post
type PostCommentRepository interface {
	// Create inserts a new comment and fills in its ID.
	Create(ctx context.Context, comment *models.Comment) error
	// ListApprovedByPost retrieves approved comments for a post, oldest first.
	ListApprovedByPost(ctx context.Context, postID int) ([]models.Comment, error)
}

// PostCategoryRepository wraps category lookups needed when writing posts
type PostCategoryRepository interface {
	// GetByID retrieves a category by ID.
	GetByID(ctx context.Context, categoryID int) (*models.Category, error)
}

// postService implements blog post business logic
type postService struct {
	postRepo     PostRepository
	commentRepo  PostCommentRepository
	categoryRepo PostCategoryRepository
	logger       *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(postRepo PostRepository, commentRepo PostCommentRepository,
	categoryRepo PostCategoryRepository, logger *zap.Logger) *postService {
	return &postService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ListPosts retrieves a page of published posts matching the filter
func (s *postService) ListPosts(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	filter.PublishedOnly = true

	posts, err := s.postRepo.List(ctx, page, perPage, filter)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.postRepo.CountList(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	for i := range posts {
		tags, err := s.postRepo.GetTags(ctx, posts[i].ID)
		if err != nil {
			return nil, nil, err
		}
		posts[i].Tags = tags
	}

	return posts, models.NewPagination(page, perPage, total), nil
}

// GetPost retrieves a published post by slug or numeric ID, increments its
// view counter and attaches its tags and approved comments. Drafts are
// visible only to their author and to admins.
func (s *postService) GetPost(ctx context.Context, slugOrID string, viewerID int, viewerRole models.Role) (*models.Post, []models.Comment, error) {
	// Slug lookup wins so a numeric slug is never shadowed by an ID.
	post, err := s.postRepo.GetBySlug(ctx, slugOrID)
	if err != nil {
		postID, convErr := strconv.Atoi(slugOrID)
		if convErr != nil {
			return nil, nil, err
		}
		if post, err = s.postRepo.GetByID(ctx, postID); err != nil {
			return nil, nil, err
		}
	}

	if !post.IsPublished && post.AuthorID != viewerID && viewerRole < models.RoleAdmin {
		return nil, nil, fmt.Errorf("post not found")
	}

	if post.IsPublished {
		// A lost view count must not fail the read.
		if err := s.postRepo.IncrementViewCount(ctx, post.ID); err != nil {
			s.logger.Warn("failed to increment view count", zap.Int("postId", post.ID), zap.Error(err))
		} else {
			post.ViewCount++
		}
	}

	tags, err := s.postRepo.GetTags(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	post.Tags = tags

	comments, err := s.commentRepo.ListApprovedByPost(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}

	return post, comments, nil
}

// CreatePost creates a new post for the given author
func (s *postService) CreatePost(ctx context.Context, authorID int, req *models.CreatePostRequest) (*models.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("title cannot be empty")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category not found")
	}
	if !category.IsActive {
		return nil, fmt.Errorf("category is not active")
	}

	post := &models.Post{
		Title:       req.Title,
		Slug:        s.uniqueSlug(ctx, req.Title),
		Excerpt:     strings.TrimSpace(req.Excerpt),
		Content:     req.Content,
		IsPublished: req.Publish,
		AuthorID:    authorID,
		CategoryID:  req.CategoryID,
	}
	if req.Publish {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	tags := buildTags(req.Tags)
	if err := s.postRepo.Create(ctx, post, tags); err != nil {
		return nil, err
	}
	post.Tags = tags

	return post, nil
}

// UpdatePost applies a partial update to a post. Only the author or an admin
// may edit a post.
func (s *postService) UpdatePost(ctx context.Context, postID, callerID int, callerRole models.Role, req *models.UpdatePostRequest) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != callerID && callerRole < models.RoleAdmin {
		return ErrForbidden
	}

	var slug string
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return fmt.Errorf("title cannot be empty")
		}
		req.Title = &trimmed
		slug = s.uniqueSlug(ctx, trimmed)
	}

	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return fmt.Errorf("category not found")
		}
		if !category.IsActive {
			return fmt.Errorf("category is not active")
		}
	}

	var tags []models.Tag
	if req.Tags != nil {
		tags = buildTags(req.Tags)
	}

	return s.postRepo.Update(ctx, postID, req, slug, tags)
}

// DeletePost removes a post. Only the author or an admin may delete a post.
func (s *postService) DeletePost(ctx context.Context, postID, callerID int, callerRole models.Role) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != callerID && callerRole < models.RoleAdmin {
		return ErrForbidden
	}

	return s.postRepo.Delete(ctx, postID)
}

// AddComment attaches an unapproved comment to a published post
func (s *postService) AddComment(ctx context.Context, postID, authorID int, req *models.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("comment cannot be empty")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, fmt.Errorf("post not found")
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: authorID,
		PostID:   postID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// uniqueSlug derives a slug from the title, falling back to a random suffix
// when the title slugifies to nothing or the slug is already taken.
func (s *postService) uniqueSlug(ctx context.Context, title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "post"
	}

	if _, err := s.postRepo.GetBySlug(ctx, slug); err != nil {
		return slug // not found, the slug is free
	}

	return fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
}

// buildTags normalizes tag names into deduplicated Tag values
func buildTags(names []string) []models.Tag {
	seen := make(map[string]struct{}, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		tags = append(tags, models.Tag{Name: name, Slug: slug})
	}
	return tags
}
