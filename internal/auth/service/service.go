// Package service orchestrates the PKCE login flow: redirect building,
// callback dispatch, session materialization, and handover exchange. Handlers
// stay thin; everything that decides goes through here.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mindlog/internal/audit"
	"mindlog/internal/auth/handover"
	"mindlog/internal/auth/supabase"
	"mindlog/internal/platform/metrics"
	"mindlog/internal/profile"
)

// ExchangeClient is the provider adapter the flow depends on.
type ExchangeClient interface {
	AuthorizeURL(provider, redirectTo, challenge, prompt string) string
	ExchangeCodeForToken(ctx context.Context, code, verifier string) (*supabase.TokenResponse, error)
}

// ProfileStore is the subset of profile storage the login flow needs.
type ProfileStore interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, p *profile.Profile) error
}

// Service wires the login pipeline together.
type Service struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	exchange ExchangeClient
	profiles ProfileStore
	handover handover.Store
	audit    *audit.Publisher

	// accountPicker is the one provider that gets prompt=select_account;
	// all others get a forced fresh login.
	accountPicker string

	// fallbackBaseURL backs the callback URL when the request carries neither
	// forwarding headers nor a Host.
	fallbackBaseURL string
}

// New constructs the auth Service.
func New(
	logger *slog.Logger,
	m *metrics.Metrics,
	exchange ExchangeClient,
	profiles ProfileStore,
	handoverStore handover.Store,
	auditPublisher *audit.Publisher,
	accountPicker string,
	fallbackBaseURL string,
) *Service {
	return &Service{
		logger:          logger,
		metrics:         m,
		tracer:          otel.Tracer("mindlog/auth"),
		exchange:        exchange,
		profiles:        profiles,
		handover:        handoverStore,
		audit:           auditPublisher,
		accountPicker:   accountPicker,
		fallbackBaseURL: fallbackBaseURL,
	}
}
