package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindlog/pkg/platform/sentinel"
)

// CookieName is the canonical web session cookie name.
const CookieName = "mindlog_session"

// Manager ties the session store to the cookie jar of the current request.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager constructs a Manager.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Request returns the session correlated with the request cookie, creating
// and setting a fresh one when absent or expired.
func (m *Manager) Request(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if id, ok := readCookie(r); ok {
		sess, err := m.store.Find(r.Context(), id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("load session: %w", err)
		}
	}
	return m.Renew(w, r)
}

// Renew issues a brand-new session and cookie, discarding any session the
// request carried. The exchange endpoint uses this so the WebView gets a
// session scoped to its own cookie jar, never a recycled one.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(r.Context(), sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	writeCookie(w, r, sess.ID)
	return sess, nil
}

// Save persists session mutations made during the request.
func (m *Manager) Save(r *http.Request, sess *Session) error {
	return m.store.Save(r.Context(), sess)
}

func readCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func writeCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if idx := strings.Index(proto, ","); idx != -1 {
		proto = proto[:idx]
	}
	return strings.TrimSpace(proto) == "https"
}
