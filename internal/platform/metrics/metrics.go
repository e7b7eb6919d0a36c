package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsStarted   *prometheus.CounterVec
	LoginsCompleted *prometheus.CounterVec
	LoginsFailed    *prometheus.CounterVec

	HandoversCreated  prometheus.Counter
	HandoversConsumed prometheus.Counter
	HandoversRejected prometheus.Counter

	ProfilesCreated prometheus.Counter

	ExchangeDuration prometheus.Histogram
}

// New creates all metrics against the given registerer. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindlog_logins_started_total",
			Help: "Login redirects issued, by client origin",
		}, []string{"origin"}),
		LoginsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindlog_logins_completed_total",
			Help: "Logins that reached a session or handover token, by client origin",
		}, []string{"origin"}),
		LoginsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mindlog_logins_failed_total",
			Help: "Login callbacks that ended in a failure redirect, by reason",
		}, []string{"reason"}),
		HandoversCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_handover_tokens_created_total",
			Help: "One-time handover tokens issued to native clients",
		}),
		HandoversConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_handover_tokens_consumed_total",
			Help: "Handover tokens successfully exchanged for a WebView session",
		}),
		HandoversRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_handover_tokens_rejected_total",
			Help: "Handover exchange attempts rejected as invalid, expired, or replayed",
		}),
		ProfilesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mindlog_profiles_created_total",
			Help: "Local profile records created on first login",
		}),
		ExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindlog_token_exchange_duration_seconds",
			Help:    "Latency of the provider token exchange call",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
