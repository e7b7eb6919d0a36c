// Package models holds the identity types shared by the auth service, the
// handover store, and the session layer.
package models

// Authority granted to every successfully authenticated user. The service has
// a single role; authorization beyond "is logged in" lives with the provider.
const AuthorityUser = "user"

// Session attribute keys installed by a completed login. The rest of the
// application reads these; renaming them is a breaking change.
const (
	AttrAccessToken  = "ACCESS_TOKEN"
	AttrUserName     = "USER_NAME"
	AttrRefreshToken = "REFRESH_TOKEN"
)

// Principal is the authenticated identity materialized from a token exchange.
type Principal struct {
	// UserID is the provider's stable user id string.
	UserID string
	// Authority is always AuthorityUser for now.
	Authority string
	// AccessToken rides along as the principal's credential.
	AccessToken string
}

// Attributes maps session attribute keys to values.
type Attributes map[string]string

// Clone returns a copy so stored attribute maps cannot be mutated by callers.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
