// Package session provides the server-side web session: a cookie-correlated
// record holding the authenticated identity, its attributes, and the
// ephemeral login state (PKCE verifier, native marker) between redirects.
package session

import (
	"context"
	"time"

	"mindlog/internal/auth/models"
)

// Session is one browser- or WebView-correlated session record.
type Session struct {
	ID         string
	UserID     string
	Authority  string
	Attributes models.Attributes

	// PKCEVerifier is held between login start and callback on the web path
	// only; native clients round-trip the verifier through the redirect URL.
	PKCEVerifier string

	// NativeClient remembers that this session was started by the native app
	// shell, for callbacks that arrive without an explicit source parameter.
	NativeClient bool

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether a principal has been installed.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Install writes a materialized principal and its attributes into the session.
func (s *Session) Install(principal models.Principal, attrs models.Attributes) {
	s.UserID = principal.UserID
	s.Authority = principal.Authority
	if s.Attributes == nil {
		s.Attributes = make(models.Attributes, len(attrs))
	}
	for k, v := range attrs {
		s.Attributes[k] = v
	}
}

// Store persists sessions keyed by their cookie value.
//
// Error contract: Find returns sentinel.ErrNotFound for unknown or expired
// sessions.
type Store interface {
	Save(ctx context.Context, session *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
