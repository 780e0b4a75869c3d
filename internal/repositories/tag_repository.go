package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellblog/backend/internal/models"
)

// tagRepository implements read access for the tags table
type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sql.DB) *tagRepository {
	return &tagRepository{
		db: db,
	}
}

// GetBySlug retrieves a tag by slug
func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	query := `
		SELECT id, name, slug
		FROM tags
		WHERE slug = ?
		LIMIT 1
	`

	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&tag.ID, &tag.Name, &tag.Slug)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}

// ListWithPostCounts retrieves all tags with their published post counts, most posts first
func (r *tagRepository) ListWithPostCounts(ctx context.Context) ([]models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug,
			COUNT(CASE WHEN p.is_published = TRUE THEN p.id END) AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id
		GROUP BY t.id
		ORDER BY post_count DESC, t.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}
