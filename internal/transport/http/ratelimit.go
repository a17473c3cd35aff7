package http

import "time"

// inboundRateLimit caps events accepted from one connection per window.
const (
	inboundRateLimit  = 600
	inboundRateWindow = time.Minute
)

// rateLimiter is a per-connection counter reset on a fixed window. It is
// only touched from that connection's read loop, so no locking is needed.
type rateLimiter struct {
	limit    int
	counter  int
	windowAt time.Time
	window   time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		window:   window,
		windowAt: time.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	if now := time.Now(); now.Sub(r.windowAt) >= r.window {
		r.windowAt = now
		r.counter = 0
	}
	r.counter++
	return r.counter <= r.limit
}
