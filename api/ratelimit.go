package api

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// defaultMaxAttempts is the number of login attempts allowed per
	// source address within one window.
	defaultMaxAttempts = 5
	// defaultWindow is the sliding-window length, and also the fixed
	// Retry-After hint sent with a 429.
	defaultWindow = 5 * time.Minute
)

// loginRateLimiter counts login attempts per source address. A bucket
// whose window has elapsed resets to a fresh count of 1 on the next
// attempt, so stale buckets are superseded in place and the map never
// grows past one bucket per address. The mutex makes it safe under
// parallel request handling.
type loginRateLimiter struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	buckets     map[string]*attemptBucket
}

type attemptBucket struct {
	count       int
	windowStart time.Time
}

func newLoginRateLimiter(maxAttempts int, window time.Duration) *loginRateLimiter {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &loginRateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		buckets:     make(map[string]*attemptBucket),
	}
}

// checkAndRecord returns false once the address has exhausted its
// attempts within the current window; otherwise it records this attempt
// (including the one that reaches the ceiling) and returns true.
// Recording happens before the caller's slow password verification so an
// attempt that never completes still counts exactly once.
func (rl *loginRateLimiter) checkAndRecord(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[addr]
	if !ok || now.Sub(b.windowStart) > rl.window {
		rl.buckets[addr] = &attemptBucket{count: 1, windowStart: now}
		return true
	}
	if b.count >= rl.maxAttempts {
		return false
	}
	b.count++
	return true
}

// reset clears the address's bucket after a successful login so earlier
// failures stop penalizing a legitimate user.
func (rl *loginRateLimiter) reset(addr string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, addr)
}

// writeRateLimited sends a 429 with the fixed retry-after hint.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, "too many login attempts; try again later")
}

// extractClientIP returns the request's direct peer address. Proxy
// headers are never consulted: hearthd fronts a home LAN, and trusting
// X-Forwarded-For would let any client spoof its rate-limit bucket.
// An unparsable RemoteAddr falls back to the raw string so the bucket
// stays per-peer instead of collapsing into one shared key.
func extractClientIP(r *http.Request) string {
	if ip, ok := parseIPCandidate(r.RemoteAddr); ok {
		return ip
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func parseIPCandidate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String(), true
	}
	return "", false
}
