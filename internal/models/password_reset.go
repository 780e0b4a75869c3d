package models

import "time"

// PasswordReset represents a single-use password reset token
type PasswordReset struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Token     string    `json:"-"` // Never serialize the raw token
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// IsValid reports whether the token is still usable
func (p *PasswordReset) IsValid(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}

// ResetRequestRequest represents a password reset token request
type ResetRequestRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a password reset submission
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
