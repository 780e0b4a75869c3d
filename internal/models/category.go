package models

// Category represents a post category
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`

	// Populated on list reads
	PostCount int `json:"postCount"`
}

// CategoryRequest represents a category create/update request
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
