// Package identity wraps the external identity provider. The provider owns
// authentication; the core only consumes the session it issues and the
// durable user identifier inside it.
package identity

import (
	"context"
	"time"
)

// Session is an authenticated identity-provider session.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the session's access token has lapsed.
func (s *Session) Expired() bool {
	return s != nil && !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Credentials are the sign-in / sign-up inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is a registered user as reported by the provider.
type Identity struct {
	UserID string
	Email  string
}

// Handler receives session change notifications: the new session on sign-in
// or token refresh, nil on sign-out.
type Handler func(*Session)

// Provider is the identity-provider surface the core consumes.
type Provider interface {
	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers a handler fired on sign-in, sign-out and
	// token refresh.
	OnSessionChange(handler Handler)
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	SignUp(ctx context.Context, creds Credentials) (*Identity, error)
	SignOut(ctx context.Context) error
}
