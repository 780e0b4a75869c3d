package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	IsApproved bool      `json:"isApproved"`
	AuthorID   int       `json:"authorId"`
	PostID     int       `json:"postId"`
	CreatedAt  time.Time `json:"createdAt"`

	// Populated on reads with joins
	AuthorUsername string `json:"authorUsername,omitempty"`
}

// CreateCommentRequest represents a comment creation request
type CreateCommentRequest struct {
	Content string `json:"content"`
}
