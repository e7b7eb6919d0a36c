package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mindlog/pkg/requestcontext"
)

type LimiterSuite struct {
	suite.Suite
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) TestAllow() {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	s.Run("requests within the limit pass", func() {
		limiter := New(3, time.Minute)
		for i := 0; i < 3; i++ {
			allowed, _ := limiter.Allow("ip-1")
			s.True(allowed)
		}
	})

	s.Run("request beyond the limit is rejected with a retry hint", func() {
		now := base
		limiter := New(2, time.Minute, WithClock(func() time.Time { return now }))

		limiter.Allow("ip-1")
		now = now.Add(10 * time.Second)
		limiter.Allow("ip-1")

		now = now.Add(10 * time.Second)
		allowed, retryAfter := limiter.Allow("ip-1")
		s.False(allowed)
		s.Equal(40*time.Second, retryAfter)
	})

	s.Run("window slides rather than resetting", func() {
		now := base
		limiter := New(2, time.Minute, WithClock(func() time.Time { return now }))

		limiter.Allow("ip-1")
		now = now.Add(30 * time.Second)
		limiter.Allow("ip-1")

		// First request has aged out; one slot is free again.
		now = now.Add(31 * time.Second)
		allowed, _ := limiter.Allow("ip-1")
		s.True(allowed)

		allowed, _ = limiter.Allow("ip-1")
		s.False(allowed)
	})

	s.Run("keys are isolated", func() {
		limiter := New(1, time.Minute)
		allowed, _ := limiter.Allow("ip-1")
		s.True(allowed)

		allowed, _ = limiter.Allow("ip-2")
		s.True(allowed)

		allowed, _ = limiter.Allow("ip-1")
		s.False(allowed)
	})
}

func (s *LimiterSuite) TestMiddleware() {
	s.Run("throttled request gets 429 with retry-after", func() {
		limiter := New(1, time.Minute)
		handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		do := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/auth/login/google", nil)
			req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "203.0.113.7", "test-agent"))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		s.Equal(http.StatusOK, do().Code)

		rec := do()
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.NotEmpty(rec.Header().Get("Retry-After"))
	})

	s.Run("remote addr backs a missing client ip", func() {
		limiter := New(1, time.Minute)
		handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/auth/login/google", nil)
		req.RemoteAddr = "198.51.100.4:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		s.Equal(http.StatusOK, rec.Code)
	})
}
