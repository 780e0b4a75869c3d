package models

import "time"

// Post represents a blog post
type Post struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"isPublished"`
	IsFeatured  bool       `json:"isFeatured"`
	ViewCount   int        `json:"viewCount"`
	AuthorID    int        `json:"authorId"`
	CategoryID  int        `json:"categoryId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	// Populated on detail reads
	AuthorUsername string `json:"authorUsername,omitempty"`
	CategoryName   string `json:"categoryName,omitempty"`
	Tags           []Tag  `json:"tags,omitempty"`
}

// ReadingTime estimates reading time in minutes at 200 words per minute
func (p *Post) ReadingTime() int {
	words := 0
	inWord := false
	for _, r := range p.Content {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
	}
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// CreatePostRequest represents a post creation request
type CreatePostRequest struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CategoryID int      `json:"categoryId"`
	Tags       []string `json:"tags"`
	Publish    bool     `json:"publish"`
}

// UpdatePostRequest represents a post update request
type UpdatePostRequest struct {
	Title      *string  `json:"title,omitempty"`
	Excerpt    *string  `json:"excerpt,omitempty"`
	Content    *string  `json:"content,omitempty"`
	CategoryID *int     `json:"categoryId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// PostFilter narrows post list queries
type PostFilter struct {
	CategoryID    *int
	Search        string
	PublishedOnly bool
}

// Pagination describes the page envelope for list responses
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"perPage"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// NewPagination builds the envelope from a total row count
func NewPagination(page, perPage, total int) *Pagination {
	pages := (total + perPage - 1) / perPage
	return &Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1 && total > 0,
	}
}
