package api

import (
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// retryAfter is the whole number of seconds until one token is available again.
func (l *limiterAdapter) retryAfter() int {
	if l == nil || l.limiter == nil || l.limiter.Limit() <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l.limiter.Limit()))))
}

// Quoting runs on every keystroke in the order form, so bursts are expected;
// the limiter only protects against runaway clients.
func rateLimitMiddleware(logger *zap.Logger, limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		retry := 1
		if adapter, ok := limiter.(*limiterAdapter); ok {
			retry = adapter.retryAfter()
		}
		logger.Warn("request throttled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("retry_after_seconds", retry),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly",
			"Debounce quote requests while the order is being edited")
	})
}
