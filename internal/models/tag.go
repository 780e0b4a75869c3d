package models

// Tag represents a post tag, linked to posts through the post_tags table
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Populated on list reads
	PostCount int `json:"postCount,omitempty"`
}
