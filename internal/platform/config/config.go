package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server reads from the environment so main
// stays lean.
type Config struct {
	Addr string `env:"MINDLOG_ADDR" envDefault:":8080"`

	// BaseURL is the externally visible origin, used as the last-resort base
	// for the OAuth callback URL when no forwarding headers are present.
	BaseURL string `env:"MINDLOG_BASE_URL" envDefault:"http://localhost:8080"`

	SupabaseURL     string `env:"SUPABASE_URL,required"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY,required"`

	// AccountPickerProvider is the one provider that gets prompt=select_account;
	// every other provider gets a forced fresh login prompt.
	AccountPickerProvider string `env:"MINDLOG_ACCOUNT_PICKER_PROVIDER" envDefault:"google"`

	HandoverTTL     time.Duration `env:"MINDLOG_HANDOVER_TTL" envDefault:"60s"`
	SessionTTL      time.Duration `env:"MINDLOG_SESSION_TTL" envDefault:"24h"`
	ExchangeTimeout time.Duration `env:"MINDLOG_EXCHANGE_TIMEOUT" envDefault:"10s"`

	// RedisURL switches the handover store to Redis when set; empty keeps the
	// single-instance in-process store.
	RedisURL string `env:"MINDLOG_REDIS_URL"`

	// PostgresURL switches profile and diary storage to Postgres when set.
	PostgresURL string `env:"MINDLOG_POSTGRES_URL"`

	KafkaBrokers []string `env:"MINDLOG_KAFKA_BROKERS"`
	AuditTopic   string   `env:"MINDLOG_AUDIT_TOPIC" envDefault:"mindlog.audit"`

	LoginRateLimit  int           `env:"MINDLOG_LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"MINDLOG_LOGIN_RATE_WINDOW" envDefault:"1m"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
