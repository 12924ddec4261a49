package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/educhat-ai/educhat/internal/api/response"
	"github.com/educhat-ai/educhat/internal/repository/redis"
	"github.com/rs/zerolog/log"
)

// RateLimitMiddleware applies the Redis fixed-window limiter per client IP.
type RateLimitMiddleware struct {
	limiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit rejects requests over the per-minute budget with 429.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, reset, err := m.limiter.Allow(r.Context(), r.RemoteAddr)
		if err != nil {
			// Limiter trouble must not take the API down.
			log.Warn().Err(err).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

		if !allowed {
			response.TooManyRequests(w, "rate limit exceeded, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
