// Package auth handles user accounts and sessions for the profile service:
// registration, login with argon2id password hashes, and opaque session
// tokens stored in Redis. Every profile route sits behind RequireAuth.
package auth

import (
	"time"
)

// User is a registered account. Profiles are scoped to its ID.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// --- Request DTOs ---

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the session token for bearer use. The same token is
// also set as the session cookie.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// --- Service inputs ---

// RegisterInput is the validated input for creating a user.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the JSON value stored in Redis under session:<token>.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
