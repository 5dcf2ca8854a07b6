// Package middleware holds HTTP middleware shared by the API server.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientKeyFunc identifies the caller a request is accounted to.
type ClientKeyFunc func(r *http.Request) string

// RemoteIP keys clients by the host part of RemoteAddr.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	key      ClientKeyFunc
	logger   *slog.Logger
}

// NewRateLimiter allows perSecond requests per client with the given burst.
func NewRateLimiter(perSecond, burst int, key ClientKeyFunc, logger *slog.Logger) *RateLimiter {
	if key == nil {
		key = RemoteIP
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		key:      key,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[client] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup forgets clients idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for client, v := range rl.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(rl.visitors, client)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := rl.key(r)
		if !rl.limiter(client).Allow() {
			rl.logger.Warn("rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"client", client)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
