package models

import "time"

// Session is the authenticated caller of one request, built from a bearer
// token and refreshed against the store on every request.
type Session struct {
	UserID    int64
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      PublicUser `json:"user"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
}
