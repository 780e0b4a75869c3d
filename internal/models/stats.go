package models

// UserStats holds user count breakdowns
type UserStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Admins int `json:"admins"`
}

// PostStats holds post count breakdowns
type PostStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
	Featured  int `json:"featured"`
}

// CommentStats holds comment count breakdowns
type CommentStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
}

// CategoryStats holds category count breakdowns
type CategoryStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Stats aggregates all count breakdowns for the stats and dashboard endpoints
type Stats struct {
	Users      UserStats     `json:"users"`
	Posts      PostStats     `json:"posts"`
	Comments   CommentStats  `json:"comments"`
	Categories CategoryStats `json:"categories"`
}
