// Package services implements the application business logic
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwellblog/backend/internal/auth"
	"github.com/inkwellblog/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserSharedRepository wraps the uniqueness checks shared by auth, profile and admin services
type UserSharedRepository interface {
	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserRepository wraps data access for the users table needed by the auth service
type UserRepository interface {
	UserSharedRepository
	// Create inserts a new user and fills in its ID.
	Create(ctx context.Context, user *models.User) error
	// GetByEmailOrUsername retrieves a user by email or username.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// RecordLogin stamps last_login and increments login_count.
	RecordLogin(ctx context.Context, userID int, loginTime time.Time) error
	// UpdatePassword replaces the user's password hash.
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// UserTokenRepository wraps data access for the user_tokens table
type UserTokenRepository interface {
	// Create inserts a new refresh token.
	Create(ctx context.Context, userToken *models.UserToken) error
	// GetByToken retrieves a refresh token record by token string.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// UpdateToken replaces oldToken with newToken for the given user.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// DeleteByToken deletes a refresh token record.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpiredTokens deletes tokens created at or before expiryTime.
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// PasswordResetRepository wraps data access for the password_resets table
type PasswordResetRepository interface {
	// Create inserts a new password reset token.
	Create(ctx context.Context, reset *models.PasswordReset) error
	// GetByToken retrieves a password reset record by token string.
	GetByToken(ctx context.Context, token string) (*models.PasswordReset, error)
	// MarkUsed marks a password reset token as consumed.
	MarkUsed(ctx context.Context, id int) error
	// DeleteExpired deletes used and expired tokens.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// authService implements authentication business logic
type authService struct {
	userRepo          UserRepository
	userTokenRepo     UserTokenRepository
	passwordResetRepo PasswordResetRepository
	tokenGenerator    *auth.TokenGenerator
	resetTokenExpiry  time.Duration
	logger            *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	passwordResetRepo PasswordResetRepository,
	tokenGenerator *auth.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:          userRepo,
		userTokenRepo:     userTokenRepo,
		passwordResetRepo: passwordResetRepo,
		tokenGenerator:    tokenGenerator,
		resetTokenExpiry:  time.Hour,
		logger:            logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

// Register creates a new user account and returns access and refresh tokens
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	normalizedEmail, normalizedUsername, err := checkRegisterCredentials(ctx, s.userRepo, req.Email, req.Username, req.Password)
	if err != nil {
		return "", "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}

	user := &models.User{
		Username:     normalizedUsername,
		Email:        normalizedEmail,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser, // Default role
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", err
	}

	return generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		return "", "", fmt.Errorf("login cannot be empty")
	}

	if req.Password == "" {
		return "", "", fmt.Errorf("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmailOrUsername(ctx, req.Login)
	if err != nil {
		return "", "", err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials")
	}

	if !user.IsActive {
		return "", "", fmt.Errorf("account is deactivated")
	}

	// Login bookkeeping must not block authentication; log and continue on failure.
	if err := s.userRepo.RecordLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to record login", zap.Int("userId", user.ID), zap.Error(err))
	}

	return generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
}

// Refresh rotates a refresh token and returns a new token pair.
//
// The database lookup and the signature validation are independent, so both
// checks run in parallel.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	errorChan := make(chan error, 2)
	userTokenChan := make(chan *models.UserToken, 1) // Buffered to prevent goroutine leak

	// Check if the token exists in the database and return it
	go func() {
		userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
		if err != nil {
			errorChan <- fmt.Errorf("failed to get user token by refresh token: %w", err)
			userTokenChan <- nil
			return
		}
		userTokenChan <- userToken
		errorChan <- nil
	}()

	// Validate the token signature and expiry
	go func() {
		if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
			errorChan <- fmt.Errorf("invalid or expired refresh token")
			// Delete token if it exists in database
			s.userTokenRepo.DeleteByToken(ctx, refreshToken)
			return
		}
		errorChan <- nil
	}()

	for i := 0; i < 2; i++ {
		if err := <-errorChan; err != nil {
			return "", "", err
		}
	}
	userToken := <-userTokenChan
	if userToken == nil {
		return "", "", fmt.Errorf("failed to refresh token: failed to get user token")
	}

	// Get user to retrieve current role
	user, err := s.userRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		return "", "", err
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(userToken.UserID, user.Role)
	if err != nil {
		return "", "", err
	}

	// Replace the old refresh token; userToken.UserID keeps the update tied to
	// the record that was actually retrieved from the database.
	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// Logout invalidates a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return fmt.Errorf("refresh token cannot be empty")
	}

	return s.userTokenRepo.DeleteByToken(ctx, refreshToken)
}

// RequestPasswordReset creates a single-use reset token for the given email.
// The token is returned to the caller; no email is sent.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(normalizedEmail) {
		return "", fmt.Errorf("invalid email format")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		return "", fmt.Errorf("email not found")
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().UTC().Add(s.resetTokenExpiry),
	}

	if err := s.passwordResetRepo.Create(ctx, reset); err != nil {
		return "", err
	}

	return reset.Token, nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	reset, err := s.passwordResetRepo.GetByToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return fmt.Errorf("invalid or expired password reset token")
	}

	if !reset.IsValid(time.Now().UTC()) {
		return fmt.Errorf("invalid or expired password reset token")
	}

	if err := validatePassword(req.Password); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, string(passwordHash)); err != nil {
		return err
	}

	if err := s.passwordResetRepo.MarkUsed(ctx, reset.ID); err != nil {
		// The password is already changed; a stale token record is not fatal.
		s.logger.Warn("failed to mark password reset as used", zap.Int("resetId", reset.ID), zap.Error(err))
	}

	return nil
}

// validatePassword checks the password against all strength rules
func validatePassword(password string) error {
	for _, regex := range passwordRegex {
		if !regex.MatchString(password) {
			return fmt.Errorf("password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character (!_?^&+-=|)")
		}
	}
	return nil
}

// generateAndSaveTokens generates a token pair and persists the refresh token
func generateAndSaveTokens(ctx context.Context, tokenGenerator *auth.TokenGenerator,
	userTokenRepo UserTokenRepository, userID int, role models.Role) (string, string, error) {
	accessToken, refreshToken, err := tokenGenerator.GenerateTokens(userID, role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// checkRegisterCredentials validates and normalizes registration input.
//
// The three checks are independent, so they run in parallel.
func checkRegisterCredentials(ctx context.Context, userRepo UserSharedRepository, email, username, password string) (string, string, error) {
	validationErrors := make(chan error, 3)
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	// Validate password strength
	go func() {
		validationErrors <- validatePassword(password)
	}()

	// Validate email and check its uniqueness
	go func() {
		if !emailRegex.MatchString(normalizedEmail) {
			validationErrors <- fmt.Errorf("invalid email format")
			return
		}
		emailExists, err := userRepo.ExistsByEmail(ctx, normalizedEmail)
		if err != nil {
			validationErrors <- fmt.Errorf("failed to check email: %w", err)
			return
		}
		if emailExists {
			validationErrors <- fmt.Errorf("email already exists")
			return
		}
		validationErrors <- nil
	}()

	// Validate username and check its uniqueness
	go func() {
		if normalizedUsername == "" {
			validationErrors <- fmt.Errorf("username cannot be empty")
			return
		}
		usernameExists, err := userRepo.ExistsByUsername(ctx, normalizedUsername)
		if err != nil {
			validationErrors <- fmt.Errorf("failed to check username: %w", err)
			return
		}
		if usernameExists {
			validationErrors <- fmt.Errorf("username already exists")
			return
		}
		validationErrors <- nil
	}()

	for i := 0; i < 3; i++ {
		if err := <-validationErrors; err != nil {
			return "", "", fmt.Errorf("failed to check user credentials: %w", err)
		}
	}

	return normalizedEmail, normalizedUsername, nil
}
