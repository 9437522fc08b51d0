package ratelimit

import (
	"sync"
	"time"

	"github.com/rvanstaden/huisvind-backend/pkg/config"
)

// Registry hands out one Limiter per session key. Keys are opaque to the
// registry; the auth service keys them by session identifier so rate-limit
// state never crosses sessions.
type Registry struct {
	cfg config.LoginGuardConfig
	now func() time.Time

	mu       sync.Mutex
	limiters map[string]*Limiter
}

func NewRegistry(cfg config.LoginGuardConfig, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		cfg:      cfg,
		now:      now,
		limiters: make(map[string]*Limiter),
	}
}

// Get returns the limiter for the key, creating it on first use.
func (r *Registry) Get(key string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[key]
	if !ok {
		limiter = NewLimiter(r.cfg, r.now)
		r.limiters[key] = limiter
	}
	return limiter
}

// Forget drops the limiter for the key. Called on session teardown.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.limiters, key)
}

// Sweep removes idle limiters that hold no attempts and no active lock.
// Intended for periodic housekeeping so the map does not grow unbounded.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, limiter := range r.limiters {
		limiter.mu.Lock()
		idle := limiter.attempts == 0 && !limiter.locked
		expired := limiter.locked && !r.now().Before(limiter.lockUntil)
		limiter.mu.Unlock()
		if idle || expired {
			delete(r.limiters, key)
			removed++
		}
	}
	return removed
}

// Len reports how many limiters are currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
