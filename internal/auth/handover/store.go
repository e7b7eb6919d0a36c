// Package handover implements the one-time token registry that bridges a
// browser-context login completion to a WebView-context session. A token is
// consumable at most once, expires after TTL, and both "missing" and
// "expired" collapse to the same not-found result so a guesser learns nothing.
package handover

import (
	"context"
	"time"

	"mindlog/internal/auth/models"
)

// DefaultTTL is how long a handover token stays consumable.
const DefaultTTL = 60 * time.Second

// Entry is the payload parked between the two HTTP contexts.
type Entry struct {
	Token      string            `json:"-"`
	Principal  models.Principal  `json:"principal"`
	Attributes models.Attributes `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Store is the narrow interface the login flow depends on. The in-process map
// can be swapped for the Redis implementation without touching callers.
//
// Error contract: Consume returns sentinel.ErrNotFound for unknown, expired,
// and already consumed tokens alike.
type Store interface {
	// Create registers a fresh one-time token for the payload and returns it.
	Create(ctx context.Context, principal models.Principal, attrs models.Attributes) (string, error)
	// Consume atomically removes and returns the entry. Exactly one caller
	// can win per token, even under concurrent attempts.
	Consume(ctx context.Context, token string) (*Entry, error)
}
