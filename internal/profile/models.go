// Package profile stores the local user profile records created on first
// login. The auth flow only needs create-if-absent; everything else about a
// profile belongs to the journal application.
package profile

import "time"

// Profile is the local record for one provider user.
type Profile struct {
	// ID is the provider's stable user id string.
	ID          string
	Email       string
	Username    string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
}
