package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/rvanstaden/huisvind-backend/pkg/config"
)

// Status is the outcome of a limiter check. RetryAfterMinutes is only
// meaningful when Allowed is false.
type Status struct {
	Allowed           bool
	RetryAfterMinutes int
}

// Limiter tracks failed login attempts for a single session and enforces a
// temporary lockout once the attempt budget is exhausted. State lives in
// memory only: a fresh session starts with a clean limiter.
type Limiter struct {
	cfg config.LoginGuardConfig
	now func() time.Time

	mu          sync.Mutex
	attempts    int
	lastAttempt time.Time
	locked      bool
	lockUntil   time.Time
}

// NewLimiter builds a limiter with the given lockout configuration. A nil
// clock falls back to time.Now.
func NewLimiter(cfg config.LoginGuardConfig, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{cfg: cfg, now: now}
}

// Check reports whether another attempt is currently allowed. Observing an
// expired lock clears all state before answering.
func (l *Limiter) Check() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		now := l.now()
		if now.Before(l.lockUntil) {
			remaining := l.lockUntil.Sub(now)
			return Status{
				Allowed:           false,
				RetryAfterMinutes: int(math.Ceil(remaining.Minutes())),
			}
		}
		l.reset()
	}
	return Status{Allowed: true}
}

// Record registers the outcome of an attempt. Success wipes the state.
// A failure outside the attempt window starts a new window at one attempt;
// within the window it increments, locking once the budget is reached.
// Recording keeps mutating counters even while locked, so repeated failures
// push the lockout forward.
func (l *Limiter) Record(success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		l.reset()
		return
	}

	now := l.now()
	if !l.lastAttempt.IsZero() && now.Sub(l.lastAttempt) > l.cfg.AttemptWindow {
		l.attempts = 1
	} else {
		l.attempts++
	}
	l.lastAttempt = now

	if l.attempts >= l.cfg.MaxAttempts {
		l.locked = true
		l.lockUntil = now.Add(l.cfg.LockoutDuration)
	}
}

// Remaining returns how many attempts are left before lockout.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.cfg.MaxAttempts - l.attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// caller must hold l.mu
func (l *Limiter) reset() {
	l.attempts = 0
	l.lastAttempt = time.Time{}
	l.locked = false
	l.lockUntil = time.Time{}
}
