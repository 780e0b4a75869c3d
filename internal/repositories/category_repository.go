package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellblog/backend/internal/models"
)

// categoryRepository implements data access for the categories table
type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) *categoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// Create inserts a new category
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, is_active)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Slug, category.Description, category.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	category.ID = int(id)
	return nil
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(ctx context.Context, categoryID int) (*models.Category, error) {
	query := `
		SELECT id, name, slug, description, is_active
		FROM categories
		WHERE id = ?
		LIMIT 1
	`

	return r.scanCategory(r.db.QueryRowContext(ctx, query, categoryID))
}

// GetBySlug retrieves a category by slug
func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	query := `
		SELECT id, name, slug, description, is_active
		FROM categories
		WHERE slug = ?
		LIMIT 1
	`

	return r.scanCategory(r.db.QueryRowContext(ctx, query, slug))
}

func (r *categoryRepository) scanCategory(row *sql.Row) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// ExistsBySlug checks if a category exists with the given slug
func (r *categoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM categories WHERE slug = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}

	return exists, nil
}

// ListWithPostCounts retrieves categories with their published post counts,
// most posts first. When activeOnly is set, inactive categories are skipped.
func (r *categoryRepository) ListWithPostCounts(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.is_active,
			COUNT(CASE WHEN p.is_published = TRUE THEN p.id END) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id`
	if activeOnly {
		query += " WHERE c.is_active = TRUE"
	}
	query += " GROUP BY c.id ORDER BY post_count DESC, c.name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(
			&category.ID, &category.Name, &category.Slug,
			&category.Description, &category.IsActive, &category.PostCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// Update updates a category's name, slug and description
func (r *categoryRepository) Update(ctx context.Context, categoryID int, name, slug, description string) error {
	query := `UPDATE categories SET name = ?, slug = ?, description = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, name, slug, description, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}

// SetActive updates a category's active flag
func (r *categoryRepository) SetActive(ctx context.Context, categoryID int, active bool) error {
	query := `UPDATE categories SET is_active = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, active, categoryID)
	if err != nil {
		return fmt.Errorf("failed to set category active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}
