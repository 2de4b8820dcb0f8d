package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oriontek/customer-core/internal/infrastructure/config"
)

// limiterIdleTTL is how long an idle client entry survives before the
// cleanup loop discards it.
const limiterIdleTTL = 10 * time.Minute

// loginLimiter throttles login attempts per client IP. Credential stuffing
// is the concern here, so only the login endpoint pays the cost.
type loginLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterEntry
	limit   rate.Limit
	burst   int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newLoginLimiter builds a limiter from config. Returns nil when rate
// limiting is disabled; the Server treats a nil limiter as a pass-through.
func newLoginLimiter(cfg config.RateLimitConfig) *loginLimiter {
	if !cfg.Enabled {
		return nil
	}
	return &loginLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:   cfg.Burst,
	}
}

// allow reports whether the given client may attempt a login now.
func (l *loginLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[clientIP]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// cleanLoop periodically drops idle client entries so the map does not
// grow without bound. Runs until ctx is cancelled.
func (l *loginLimiter) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.clean()
		}
	}
}

func (l *loginLimiter) clean() {
	cutoff := time.Now().Add(-limiterIdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// withLoginRateLimit wraps a handler with the per-IP login throttle.
func (s *Server) withLoginRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next(w, r)
			return
		}
		if !s.limiter.allow(clientIP(r)) {
			s.metrics.RecordLogin("rate_limited")
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "too many login attempts, try again later")
			return
		}
		next(w, r)
	}
}

// clientIP extracts the remote address without the port. Proxy headers are
// deliberately ignored: this service is expected to sit behind a trusted
// reverse proxy that rewrites RemoteAddr, and trusting X-Forwarded-For
// blindly would let clients evade the limiter.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
