package services

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwellblog/backend/internal/models"
)

// AdminUserRepository wraps user management access for the admin service
type AdminUserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// GetAll retrieves a page of users, optionally filtered by role and search query.
	GetAll(ctx context.Context, page, count int, role *models.Role, search string) ([]models.User, error)
	// Count returns the number of users matching the filter.
	Count(ctx context.Context, role *models.Role, search string) (int, error)
	// SetActive flips a user's active flag.
	SetActive(ctx context.Context, userID int, active bool) error
	// SetRole replaces a user's role.
	SetRole(ctx context.Context, userID int, role models.Role) error
}

// AdminPostRepository wraps post management access for the admin service
type AdminPostRepository interface {
	// GetByID retrieves a post by ID.
	GetByID(ctx context.Context, postID int) (*models.Post, error)
	// List retrieves a page of posts matching the filter.
	List(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, error)
	// CountList returns the number of posts matching the filter.
	CountList(ctx context.Context, filter models.PostFilter) (int, error)
	// SetPublished flips a post's published flag and stamps publishedAt.
	SetPublished(ctx context.Context, postID int, published bool, publishedAt *time.Time) error
}

// AdminCommentRepository wraps comment moderation access for the admin service
type AdminCommentRepository interface {
	// GetByID retrieves a comment by ID.
	GetByID(ctx context.Context, commentID int) (*models.Comment, error)
	// ListAll retrieves a page of comments, newest first.
	ListAll(ctx context.Context, page, perPage int) ([]models.Comment, error)
	// Count returns the total number of comments.
	Count(ctx context.Context) (int, error)
	// SetApproved flips a comment's approved flag.
	SetApproved(ctx context.Context, commentID int, approved bool) error
}

// StatsRepository aggregates counters across all content tables
type StatsRepository interface {
	// Collect gathers user, post, comment and category counters.
	Collect(ctx context.Context) (*models.Stats, error)
}

// adminService implements the admin panel business logic
type adminService struct {
	userRepo    AdminUserRepository
	postRepo    AdminPostRepository
	commentRepo AdminCommentRepository
	statsRepo   StatsRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository, postRepo AdminPostRepository,
	commentRepo AdminCommentRepository, statsRepo StatsRepository) *adminService {
	return &adminService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		statsRepo:   statsRepo,
	}
}

// Dashboard collects site-wide counters for the admin dashboard
func (s *adminService) Dashboard(ctx context.Context) (*models.Stats, error) {
	return s.statsRepo.Collect(ctx)
}

// ToggleUserActive flips a user's active flag. Admins cannot deactivate
// themselves.
func (s *adminService) ToggleUserActive(ctx context.Context, userID, callerID int) (bool, error) {
	if userID == callerID {
		return false, fmt.Errorf("cannot deactivate your own account")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	newState := !user.IsActive
	if err := s.userRepo.SetActive(ctx, userID, newState); err != nil {
		return false, err
	}

	return newState, nil
}

// ToggleUserAdmin flips a user's role between user and admin. Admins cannot
// demote themselves.
func (s *adminService) ToggleUserAdmin(ctx context.Context, userID, callerID int) (models.Role, error) {
	if userID == callerID {
		return 0, fmt.Errorf("cannot change your own admin status")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	newRole := models.RoleAdmin
	if user.IsAdmin() {
		newRole = models.RoleUser
	}
	if err := s.userRepo.SetRole(ctx, userID, newRole); err != nil {
		return 0, err
	}

	return newRole, nil
}

// ListAllPosts retrieves a page of posts including drafts
func (s *adminService) ListAllPosts(ctx context.Context, page, perPage int) ([]models.Post, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	filter := models.PostFilter{} // Drafts included

	posts, err := s.postRepo.List(ctx, page, perPage, filter)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.postRepo.CountList(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	return posts, models.NewPagination(page, perPage, total), nil
}

// TogglePostPublished flips a post's published flag, stamping publishedAt on
// the first publish.
func (s *adminService) TogglePostPublished(ctx context.Context, postID int) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}

	newState := !post.IsPublished
	publishedAt := post.PublishedAt
	if newState && publishedAt == nil {
		now := time.Now().UTC()
		publishedAt = &now
	}

	if err := s.postRepo.SetPublished(ctx, postID, newState, publishedAt); err != nil {
		return false, err
	}

	return newState, nil
}

// ListComments retrieves a page of all comments for moderation
func (s *adminService) ListComments(ctx context.Context, page, perPage int) ([]models.Comment, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}

	comments, err := s.commentRepo.ListAll(ctx, page, perPage)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.commentRepo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}

	return comments, models.NewPagination(page, perPage, total), nil
}

// ToggleCommentApproved flips a comment's approved flag
func (s *adminService) ToggleCommentApproved(ctx context.Context, commentID int) (bool, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return false, err
	}

	newState := !comment.IsApproved
	if err := s.commentRepo.SetApproved(ctx, commentID, newState); err != nil {
		return false, err
	}

	return newState, nil
}
