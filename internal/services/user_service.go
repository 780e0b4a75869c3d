package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwellblog/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserProfileRepository wraps data access for the users table needed by the user service
type UserProfileRepository interface {
	UserSharedRepository
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// GetAll retrieves a page of users, optionally filtered by role and search query.
	GetAll(ctx context.Context, page, count int, role *models.Role, search string) ([]models.User, error)
	// Count returns the number of users matching the filter.
	Count(ctx context.Context, role *models.Role, search string) (int, error)
	// UpdateProfile applies a partial profile update.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) error
	// UpdatePassword replaces the user's password hash.
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// AuthorPostRepository lists posts for a user's public page
type AuthorPostRepository interface {
	// ListByAuthor retrieves the most recent published posts by the given author.
	ListByAuthor(ctx context.Context, authorID, limit int) ([]models.Post, error)
}

// userService implements user profile business logic
type userService struct {
	userRepo UserProfileRepository
	postRepo AuthorPostRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserProfileRepository, postRepo AuthorPostRepository) *userService {
	return &userService{
		userRepo: userRepo,
		postRepo: postRepo,
	}
}

// GetProfile retrieves the current user's profile
func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetUser retrieves a user's public page: the profile and their recent published posts
func (s *userService) GetUser(ctx context.Context, userID int) (*models.User, []models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, userID, 5)
	if err != nil {
		return nil, nil, err
	}

	return user, posts, nil
}

// ListUsers retrieves a page of users with the total count for pagination
func (s *userService) ListUsers(ctx context.Context, page, perPage int, role *models.Role, search string) ([]models.User, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}

	users, err := s.userRepo.GetAll(ctx, page, perPage, role, search)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.userRepo.Count(ctx, role, search)
	if err != nil {
		return nil, nil, err
	}

	return users, models.NewPagination(page, perPage, total), nil
}

// UpdateProfile applies a partial update to the current user's profile
func (s *userService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) error {
	if req.Username == nil && req.Email == nil && req.Bio == nil {
		return fmt.Errorf("nothing to update")
	}

	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if req.Username != nil {
		normalized := strings.TrimSpace(*req.Username)
		if normalized == "" {
			return fmt.Errorf("username cannot be empty")
		}
		if normalized != current.Username {
			exists, err := s.userRepo.ExistsByUsername(ctx, normalized)
			if err != nil {
				return fmt.Errorf("failed to check username: %w", err)
			}
			if exists {
				return fmt.Errorf("username already exists")
			}
		}
		req.Username = &normalized
	}

	if req.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*req.Email))
		if !emailRegex.MatchString(normalized) {
			return fmt.Errorf("invalid email format")
		}
		if normalized != current.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, normalized)
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return fmt.Errorf("email already exists")
			}
		}
		req.Email = &normalized
	}

	return s.userRepo.UpdateProfile(ctx, userID, req)
}

// ChangePassword verifies the current password and sets a new one
func (s *userService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(passwordHash))
}
