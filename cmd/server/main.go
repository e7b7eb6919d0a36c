package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mindlog/internal/audit"
	authhandler "mindlog/internal/auth/handler"
	"mindlog/internal/auth/handover"
	"mindlog/internal/auth/service"
	"mindlog/internal/auth/session"
	"mindlog/internal/auth/supabase"
	"mindlog/internal/diary"
	"mindlog/internal/platform/config"
	"mindlog/internal/platform/httpserver"
	"mindlog/internal/platform/logger"
	"mindlog/internal/platform/metrics"
	"mindlog/internal/platform/postgres"
	platformredis "mindlog/internal/platform/redis"
	"mindlog/internal/profile"
	"mindlog/internal/ratelimit"
)

// main wires dependencies and owns the process lifecycle. Business logic lives
// in the internal packages; this file only chooses store variants and starts
// the workers.
func main() {
	log := logger.New()

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Handover tokens must be visible to every instance, so Redis takes over
	// whenever it is configured.
	var handoverStore handover.Store
	if redisClient != nil {
		handoverStore = handover.NewRedisStore(redisClient.Client, cfg.HandoverTTL)
	} else {
		handoverStore = handover.NewInMemoryStore(handover.WithTTL(cfg.HandoverTTL))
	}

	var profiles service.ProfileStore
	var diaryStore diary.Store
	if pool != nil {
		profiles = profile.NewPostgresStore(pool)
		diaryStore = diary.NewPostgresStore(pool)
	} else {
		profiles = profile.NewInMemoryStore()
		diaryStore = diary.NewInMemoryStore()
	}

	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	publisher := audit.NewPublisher(log, 256)

	sessions := session.NewManager(session.NewInMemoryStore(), cfg.SessionTTL)
	exchange := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ExchangeTimeout)
	authService := service.New(log, m, exchange, profiles, handoverStore, publisher, cfg.AccountPickerProvider, cfg.BaseURL)
	limiter := ratelimit.New(cfg.LoginRateLimit, cfg.LoginRateWindow)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	diary.NewHandler(diaryStore, sessions, log).Register(router)
	authhandler.New(authService, sessions, log, m, limiter).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return publisher.Run(gctx, sink)
	})

	g.Go(func() error {
		log.Info("starting mindlog", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
