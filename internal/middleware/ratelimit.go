package middleware

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/observability"
)

// Limiter decides whether a request identified by key may proceed. Errors
// fail open: an unreachable limiter backend must not take the data plane
// down with it.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// localLimiter is a process-local token bucket shared by all clients.
type localLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter creates a token-bucket limiter local to this process.
func NewLocalLimiter(rps, burst int) Limiter {
	return &localLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *localLimiter) Allow(context.Context, string) (bool, error) {
	return l.limiter.Allow(), nil
}

// redisLimiter is a fixed-window counter shared across gateway replicas.
type redisLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int64
}

// NewRedisLimiter creates a fixed-window limiter backed by Redis. limit is
// the number of requests allowed per key per window.
func NewRedisLimiter(client *redis.Client, limit int64, window time.Duration) Limiter {
	return &redisLimiter{client: client, window: window, limit: limit}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}

// RateLimit returns a middleware that applies the limiter keyed by client
// IP. Limiter errors are logged and the request is let through.
func RateLimit(limiter Limiter, logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request",
					observability.String("client_ip", clientIP),
					observability.Error(err),
				)
				allowed = true
			}

			if !allowed {
				logger.Warn("rate limit exceeded",
					observability.String("client_ip", clientIP),
					observability.String("path", r.URL.Path),
				)

				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.Header().Set(HeaderRetryAfter, "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitFromConfig builds rate limit middleware from gateway config.
// With a redisAddr configured the window counter is shared across
// replicas; otherwise a process-local token bucket is used. The returned
// closer releases the Redis connection and is nil for the local limiter.
func RateLimitFromConfig(
	cfg config.RateLimitConfig,
	logger observability.Logger,
) (func(http.Handler) http.Handler, io.Closer) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		window := cfg.Window.Duration()
		limit := int64(cfg.RequestsPerSecond) * int64(window.Seconds())
		return RateLimit(NewRedisLimiter(client, limit, window), logger), client
	}

	return RateLimit(NewLocalLimiter(cfg.RequestsPerSecond, cfg.Burst), logger), nil
}

// clientIP extracts the client IP from RemoteAddr. Forwarding headers are
// deliberately not trusted here.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
