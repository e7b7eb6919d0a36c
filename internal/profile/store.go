package profile

import "context"

// Store persists profiles keyed by provider user id.
//
// Error contract:
// - FindByID returns sentinel.ErrNotFound when no profile exists
// - Save returns sentinel.ErrConflict when the id is already taken (a
//   concurrent duplicate login lost the insert race; retryable)
type Store interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
