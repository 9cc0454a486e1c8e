package http

import (
	"sync"
	"time"

	"github.com/dkeye/liveroom/internal/domain"
	"github.com/gammazero/deque"
)

// RateLimiter is a sliding-window limiter keyed by client.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID]*deque.Deque[time.Time]
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[domain.UserID]*deque.Deque[time.Time]),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Allow records an attempt for uid and reports whether it fits the window.
func (rl *RateLimiter) Allow(uid domain.UserID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts, ok := rl.history[uid]
	if !ok {
		attempts = &deque.Deque[time.Time]{}
		rl.history[uid] = attempts
	}
	for attempts.Len() > 0 && !attempts.Front().After(windowStart) {
		attempts.PopFront()
	}
	if attempts.Len() >= rl.limit {
		return false
	}
	attempts.PushBack(now)
	return true
}

// Forget drops the history of clients with no attempt inside the window.
func (rl *RateLimiter) Forget() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	windowStart := rl.now().Add(-rl.interval)
	n := 0
	for uid, attempts := range rl.history {
		if attempts.Len() == 0 || !attempts.Back().After(windowStart) {
			delete(rl.history, uid)
			n++
		}
	}
	return n
}
