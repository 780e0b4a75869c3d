package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellblog/backend/internal/models"
)

// postRepository implements data access for the posts, tags and post_tags tables
type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{
		db: db,
	}
}

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, p.is_published, p.is_featured,
		p.view_count, p.author_id, p.category_id, p.created_at, p.updated_at, p.published_at,
		u.username, c.name`

const postJoins = `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN categories c ON c.id = p.category_id`

// Create inserts a new post and links its tags inside a single transaction
func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (title, slug, excerpt, content, is_published, is_featured, author_id, category_id, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content,
		post.IsPublished, post.IsFeatured, post.AuthorID, post.CategoryID, post.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	post.ID = int(id)

	if err := linkTags(ctx, tx, post.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// linkTags ensures every tag row exists and links it to the post
func linkTags(ctx context.Context, tx *sql.Tx, postID int, tags []models.Tag) error {
	for _, tag := range tags {
		var tagID int
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE slug = ? LIMIT 1`, tag.Slug).Scan(&tagID)
		if err == sql.ErrNoRows {
			result, err := tx.ExecContext(ctx, `INSERT INTO tags (name, slug) VALUES (?, ?)`, tag.Name, tag.Slug)
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			tagID = int(id)
		} else if err != nil {
			return fmt.Errorf("failed to look up tag: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return fmt.Errorf("failed to link tag to post: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a post by ID with author and category names
func (r *postRepository) GetByID(ctx context.Context, postID int) (*models.Post, error) {
	query := `SELECT ` + postColumns + postJoins + ` WHERE p.id = ? LIMIT 1`

	return r.scanPost(r.db.QueryRowContext(ctx, query, postID))
}

// GetBySlug retrieves a post by slug with author and category names
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + postColumns + postJoins + ` WHERE p.slug = ? LIMIT 1`

	return r.scanPost(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postRepository) scanPost(row *sql.Row) (*models.Post, error) {
	post := &models.Post{}
	var publishedAt sql.NullTime
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.IsPublished,
		&post.IsFeatured,
		&post.ViewCount,
		&post.AuthorID,
		&post.CategoryID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&publishedAt,
		&post.AuthorUsername,
		&post.CategoryName,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	return post, nil
}

// GetTags retrieves all tags linked to a post
func (r *postRepository) GetTags(ctx context.Context, postID int) ([]models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// filterConditions builds the WHERE clause fragments for a post filter
func filterConditions(filter models.PostFilter) ([]string, []any) {
	var conditions []string
	var args []any

	if filter.PublishedOnly {
		conditions = append(conditions, "p.is_published = TRUE")
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "p.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(p.title LIKE ? OR p.content LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	return conditions, args
}

// List retrieves a page of posts matching the filter, newest first
func (r *postRepository) List(ctx context.Context, page, perPage int, filter models.PostFilter) ([]models.Post, error) {
	conditions, args := filterConditions(filter)

	query := `SELECT ` + postColumns + postJoins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)

	return r.queryPosts(ctx, query, args...)
}

// CountList returns the total number of posts matching the filter
func (r *postRepository) CountList(ctx context.Context, filter models.PostFilter) (int, error) {
	conditions, args := filterConditions(filter)

	query := `SELECT COUNT(*) FROM posts p`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return total, nil
}

// ListByAuthor retrieves the most recent posts of an author
func (r *postRepository) ListByAuthor(ctx context.Context, authorID, limit int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + postJoins + `
		WHERE p.author_id = ?
		ORDER BY p.created_at DESC LIMIT ?`

	return r.queryPosts(ctx, query, authorID, limit)
}

// ListByTag retrieves a page of published posts carrying the given tag
func (r *postRepository) ListByTag(ctx context.Context, tagSlug string, page, perPage int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + postJoins + `
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.slug = ? AND p.is_published = TRUE
		ORDER BY p.created_at DESC LIMIT ? OFFSET ?`

	return r.queryPosts(ctx, query, tagSlug, perPage, (page-1)*perPage)
}

// CountByTag returns the number of published posts carrying the given tag
func (r *postRepository) CountByTag(ctx context.Context, tagSlug string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.slug = ? AND p.is_published = TRUE
	`

	var total int
	if err := r.db.QueryRowContext(ctx, query, tagSlug).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts by tag: %w", err)
	}

	return total, nil
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content,
			&post.IsPublished, &post.IsFeatured, &post.ViewCount,
			&post.AuthorID, &post.CategoryID, &post.CreatedAt, &post.UpdatedAt,
			&publishedAt, &post.AuthorUsername, &post.CategoryName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if publishedAt.Valid {
			post.PublishedAt = &publishedAt.Time
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// Update updates the provided post fields and replaces tag links when tags are given
func (r *postRepository) Update(ctx context.Context, postID int, req *models.UpdatePostRequest, slug string, tags []models.Tag) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []any

	if req.Title != nil {
		sets = append(sets, "title = ?", "slug = ?")
		args = append(args, *req.Title, slug)
	}
	if req.Excerpt != nil {
		sets = append(sets, "excerpt = ?")
		args = append(args, *req.Excerpt)
	}
	if req.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *req.Content)
	}
	if req.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *req.CategoryID)
	}

	if len(sets) > 0 {
		query := "UPDATE posts SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, postID)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("post not found")
		}
	}

	if req.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
			return fmt.Errorf("failed to unlink post tags: %w", err)
		}
		if err := linkTags(ctx, tx, postID, tags); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a post; comments and tag links go with it via cascade rules
func (r *postRepository) Delete(ctx context.Context, postID int) error {
	query := `DELETE FROM posts WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found")
	}

	return nil
}

// IncrementViewCount bumps the view counter of a post
func (r *postRepository) IncrementViewCount(ctx context.Context, postID int) error {
	query := `UPDATE posts SET view_count = view_count + 1 WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, postID); err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

// SetPublished updates the published flag, stamping published_at on first publish
func (r *postRepository) SetPublished(ctx context.Context, postID int, published bool, publishedAt *time.Time) error {
	var result sql.Result
	var err error

	if publishedAt != nil {
		result, err = r.db.ExecContext(ctx,
			`UPDATE posts SET is_published = ?, published_at = ? WHERE id = ?`,
			published, *publishedAt, postID)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE posts SET is_published = ? WHERE id = ?`,
			published, postID)
	}
	if err != nil {
		return fmt.Errorf("failed to set post published flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found")
	}

	return nil
}
