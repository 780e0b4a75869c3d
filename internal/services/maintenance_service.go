package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// maintenanceService purges expired refresh tokens and password reset tokens
type maintenanceService struct {
	userTokenRepo      UserTokenRepository
	passwordResetRepo  PasswordResetRepository
	refreshTokenExpiry time.Duration
	logger             *zap.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(userTokenRepo UserTokenRepository, passwordResetRepo PasswordResetRepository,
	refreshTokenExpiry time.Duration, logger *zap.Logger) *maintenanceService {
	return &maintenanceService{
		userTokenRepo:      userTokenRepo,
		passwordResetRepo:  passwordResetRepo,
		refreshTokenExpiry: refreshTokenExpiry,
		logger:             logger,
	}
}

// CleanTokens deletes refresh tokens past their lifetime and used or expired
// password reset tokens. Returns the number of deleted rows per table.
func (s *maintenanceService) CleanTokens(ctx context.Context) (int, int, error) {
	now := time.Now().UTC()

	refreshDeleted, err := s.userTokenRepo.DeleteExpiredTokens(ctx, now.Add(-s.refreshTokenExpiry))
	if err != nil {
		return 0, 0, err
	}

	resetDeleted, err := s.passwordResetRepo.DeleteExpired(ctx, now)
	if err != nil {
		return refreshDeleted, 0, err
	}

	s.logger.Info("token cleanup finished",
		zap.Int("refreshTokensDeleted", refreshDeleted),
		zap.Int("passwordResetsDeleted", resetDeleted))

	return refreshDeleted, resetDeleted, nil
}
