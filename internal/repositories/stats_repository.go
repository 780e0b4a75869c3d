package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellblog/backend/internal/models"
)

// statsRepository aggregates count queries for the stats and dashboard endpoints
type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *statsRepository {
	return &statsRepository{
		db: db,
	}
}

// Collect gathers all count breakdowns in one round trip
func (r *statsRepository) Collect(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM users WHERE role = ?),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM posts WHERE is_published = TRUE),
			(SELECT COUNT(*) FROM posts WHERE is_published = FALSE),
			(SELECT COUNT(*) FROM posts WHERE is_featured = TRUE),
			(SELECT COUNT(*) FROM comments),
			(SELECT COUNT(*) FROM comments WHERE is_approved = TRUE),
			(SELECT COUNT(*) FROM comments WHERE is_approved = FALSE),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM categories WHERE is_active = TRUE)
	`

	stats := &models.Stats{}
	err := r.db.QueryRowContext(ctx, query, models.RoleAdmin).Scan(
		&stats.Users.Total,
		&stats.Users.Active,
		&stats.Users.Admins,
		&stats.Posts.Total,
		&stats.Posts.Published,
		&stats.Posts.Drafts,
		&stats.Posts.Featured,
		&stats.Comments.Total,
		&stats.Comments.Approved,
		&stats.Comments.Pending,
		&stats.Categories.Total,
		&stats.Categories.Active,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stats not available")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	return stats, nil
}
