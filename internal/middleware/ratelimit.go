package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterTTL is how long an idle client's limiter is kept.
const limiterTTL = 10 * time.Minute

// clientLimiter stores one token bucket per client IP.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(r rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

// get returns the limiter for ip, sweeping idle entries as it goes so the map
// stays bounded without a background goroutine.
func (c *clientLimiter) get(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.limiters {
		if now.Sub(e.lastSeen) > limiterTTL {
			delete(c.limiters, key)
		}
	}

	e, ok := c.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(c.rate, c.burst)}
		c.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit returns middleware that allows rps requests per second per client
// IP, with bursts of up to burst requests. Rejected requests get 429 and a
// Retry-After header.
//
// Wire it after chimiddleware.RealIP so r.RemoteAddr is the client address.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cl := newClientLimiter(rate.Limit(rps), burst)
	retryAfter := "1"
	if rps > 0 && rps < 1 {
		retryAfter = strconv.Itoa(int(1/rps + 0.5))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from r.RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSONError writes the API's standard error body.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
