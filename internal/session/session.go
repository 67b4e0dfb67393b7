// Package session implements cookie-backed server-side sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sufrahub/sufra/models"
)

// CookieName is the session cookie set on login.
const CookieName = "sufra_session"

// ErrNotFound is returned when a token has no live session.
var ErrNotFound = errors.New("session not found")

// Session ties a random token to an authenticated user.
type Session struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	Save(ctx context.Context, s Session) error
	Find(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// New mints a session for a user with a fresh random token.
func New(user *models.User, ttl time.Duration) Session {
	now := time.Now()
	return Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
