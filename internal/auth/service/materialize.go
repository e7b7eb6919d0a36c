package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mindlog/internal/auth/models"
	"mindlog/internal/auth/supabase"
	"mindlog/internal/profile"
	dErrors "mindlog/pkg/domain-errors"
	"mindlog/pkg/platform/sentinel"
)

// materialized is a login turned into everything a session needs.
type materialized struct {
	principal models.Principal
	attrs     models.Attributes
	// tokenExpiry caps the web session lifetime to the access token's own,
	// when the token carries a parseable exp claim.
	tokenExpiry *time.Time
}

// materialize turns a successful token exchange into a principal and session
// attributes, creating the local profile record on first login.
func (s *Service) materialize(ctx context.Context, tok *supabase.TokenResponse) (materialized, error) {
	if tok.AccessToken == "" || tok.User.ID == "" || tok.User.Email == "" {
		// A contract breach with the provider, not a user-facing condition.
		return materialized{}, dErrors.New(dErrors.CodeInternal, "provider returned an incomplete identity")
	}

	localPart := emailLocalPart(tok.User.Email)

	displayName := tok.User.Metadata("full_name")
	if displayName == "" {
		displayName = tok.User.Metadata("name")
	}
	if displayName == "" {
		displayName = localPart
	}

	avatarURL := tok.User.Metadata("avatar_url")
	if avatarURL == "" {
		avatarURL = tok.User.Metadata("picture")
	}

	if err := s.ensureProfile(ctx, tok.User, localPart, displayName, avatarURL); err != nil {
		return materialized{}, err
	}

	attrs := models.Attributes{
		models.AttrAccessToken: tok.AccessToken,
		models.AttrUserName:    displayName,
	}
	if tok.RefreshToken != "" {
		attrs[models.AttrRefreshToken] = tok.RefreshToken
	}

	return materialized{
		principal: models.Principal{
			UserID:      tok.User.ID,
			Authority:   models.AuthorityUser,
			AccessToken: tok.AccessToken,
		},
		attrs:       attrs,
		tokenExpiry: accessTokenExpiry(tok.AccessToken),
	}, nil
}

// ensureProfile creates the local profile on first login. A lost insert race
// surfaces as a retryable conflict rather than being swallowed.
func (s *Service) ensureProfile(ctx context.Context, user supabase.User, localPart, displayName, avatarURL string) error {
	exists, err := s.profiles.ExistsByID(ctx, user.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "profile lookup failed")
	}
	if exists {
		return nil
	}

	p := &profile.Profile{
		ID:          user.ID,
		Email:       user.Email,
		Username:    localPart + userIDHexPrefix(user.ID),
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "profile creation raced a concurrent login")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "profile creation failed")
	}
	s.metrics.ProfilesCreated.Inc()
	s.logger.InfoContext(ctx, "profile created", "user_id", user.ID, "username", p.Username)
	return nil
}

func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx != -1 {
		return email[:idx]
	}
	return email
}

// userIDHexPrefix takes the first 8 hex characters of the provider user id
// (a UUID) to disambiguate synthesized usernames.
func userIDHexPrefix(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return hex
}

// accessTokenExpiry pulls the exp claim out of the provider access token
// without verifying the signature; we only use it to bound session lifetime,
// never to authenticate.
func accessTokenExpiry(accessToken string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
