package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inkwellblog/backend/internal/models"
)

// commentRepository implements data access for the comments table
type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{
		db: db,
	}
}

// Create inserts a new comment; comments start unapproved
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (content, author_id, post_id)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, comment.Content, comment.AuthorID, comment.PostID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	comment.ID = int(id)
	return nil
}

// GetByID retrieves a comment by ID
func (r *commentRepository) GetByID(ctx context.Context, commentID int) (*models.Comment, error) {
	query := `
		SELECT id, content, is_approved, author_id, post_id, created_at
		FROM comments
		WHERE id = ?
		LIMIT 1
	`

	comment := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, commentID).Scan(
		&comment.ID,
		&comment.Content,
		&comment.IsApproved,
		&comment.AuthorID,
		&comment.PostID,
		&comment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// ListApprovedByPost retrieves approved comments of a post, oldest first
func (r *commentRepository) ListApprovedByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.content, c.is_approved, c.author_id, c.post_id, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ? AND c.is_approved = TRUE
		ORDER BY c.created_at ASC
	`

	return r.queryComments(ctx, query, postID)
}

// ListAll retrieves a page of all comments, newest first
func (r *commentRepository) ListAll(ctx context.Context, page, perPage int) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.content, c.is_approved, c.author_id, c.post_id, c.created_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		ORDER BY c.created_at DESC LIMIT ? OFFSET ?
	`

	return r.queryComments(ctx, query, perPage, (page-1)*perPage)
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID, &comment.Content, &comment.IsApproved,
			&comment.AuthorID, &comment.PostID, &comment.CreatedAt,
			&comment.AuthorUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// Count returns the total number of comments
func (r *commentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return total, nil
}

// SetApproved updates a comment's approved flag
func (r *commentRepository) SetApproved(ctx context.Context, commentID int, approved bool) error {
	query := `UPDATE comments SET is_approved = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, approved, commentID)
	if err != nil {
		return fmt.Errorf("failed to set comment approved flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("comment not found")
	}

	return nil
}
