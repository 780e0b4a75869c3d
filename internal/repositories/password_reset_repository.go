package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwellblog/backend/internal/models"
)

// passwordResetRepository implements data access for the password_resets table
type passwordResetRepository struct {
	db *sql.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *sql.DB) *passwordResetRepository {
	return &passwordResetRepository{
		db: db,
	}
}

// Create inserts a new password reset token
func (r *passwordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (user_id, token, expires_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, reset.UserID, reset.Token, reset.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	reset.ID = int(id)
	return nil
}

// GetByToken retrieves a password reset record by token string
func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordReset, error) {
	query := `
		SELECT id, user_id, token, expires_at, used
		FROM password_resets
		WHERE token = ?
		LIMIT 1
	`

	reset := &models.PasswordReset{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.Token,
		&reset.ExpiresAt,
		&reset.Used,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("password reset token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password reset by token: %w", err)
	}

	return reset, nil
}

// MarkUsed marks a password reset token as consumed
func (r *passwordResetRepository) MarkUsed(ctx context.Context, id int) error {
	query := `UPDATE password_resets SET used = TRUE WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark password reset as used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("password reset token not found")
	}

	return nil
}

// DeleteExpired deletes used tokens and tokens past their expiry
func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM password_resets WHERE used = TRUE OR expires_at <= ?`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password resets: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
