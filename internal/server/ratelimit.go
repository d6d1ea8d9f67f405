package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"skillvet/internal/errors"

	"golang.org/x/time/rate"
)

const limiterEvictionAge = 10 * time.Minute

// RateLimiter hands out one token bucket per client key (IP or API key) and
// evicts buckets that have gone quiet.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	done     chan struct{}
	logger   *errors.Logger
}

// NewRateLimiter builds a limiter allowing requestsPerMin sustained requests
// with the given burst capacity per key, and starts the eviction loop.
func NewRateLimiter(requestsPerMin, burst int, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go rl.evictLoop()
	return rl
}

// Allow reports whether a request under the given key may proceed. Never
// blocks.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[key] = bucket
	}
	rl.lastSeen[key] = time.Now()
	rl.mu.Unlock()

	return bucket.Allow()
}

// GetStats returns counters for the stats endpoint.
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.buckets),
		"rate_per_minute": float64(rl.limit) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(limiterEvictionAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictStale()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-limiterEvictionAge)
	for key, seen := range rl.lastSeen {
		if seen.Before(cutoff) {
			delete(rl.buckets, key)
			delete(rl.lastSeen, key)
		}
	}

	if rl.logger != nil {
		rl.logger.Debug("Rate limiter eviction completed",
			"remaining_buckets", len(rl.buckets))
	}
}

// Close stops the eviction loop.
func (rl *RateLimiter) Close() {
	close(rl.done)
}

// rateLimitMiddleware rejects requests whose key has exhausted its bucket.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey picks the bucket key: API key when present and enabled,
// else client IP, else empty (unlimited).
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				apiKey = after
			}
		}
		if apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP resolves the client address, trusting proxy headers first.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseFirstIP(list string) string {
	for ip := range strings.SplitSeq(list, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
