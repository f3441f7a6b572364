// Package ratelimit implements the per-service minimum inter-request
// spacing limiter (spec §4.1, C1), grounded on
// original_source/src/helpers/ratelimit.rs.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultMinIntervalMS is applied to any service that is rate-limited
// before being explicitly registered.
const DefaultMinIntervalMS = 500

type serviceLimit struct {
	lastAccess    time.Time
	minIntervalMS int64
}

// Limiter is a process-global, thread-safe rate limiter. The zero
// value is not usable; use New.
type Limiter struct {
	mu       sync.Mutex
	services map[string]*serviceLimit
	now      func() time.Time
	sleep    func(time.Duration)
}

// New builds an empty Limiter.
func New() *Limiter {
	return &Limiter{
		services: make(map[string]*serviceLimit),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// RegisterService configures minIntervalMS for name. The service's
// last-access time is backdated so the very first RateLimit call never
// blocks.
func (l *Limiter) RegisterService(name string, minIntervalMS int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services[name] = &serviceLimit{
		lastAccess:    l.now().Add(-time.Duration(minIntervalMS) * time.Millisecond),
		minIntervalMS: minIntervalMS,
	}
}

// RateLimit blocks the caller until at least the configured
// minIntervalMS has elapsed since the last completed call for name.
// Unregistered services are auto-registered at DefaultMinIntervalMS,
// also backdated so their first call never blocks. The last-access
// timestamp is updated to "now" after the sleep, not before.
func (l *Limiter) RateLimit(name string) {
	l.mu.Lock()
	now := l.now()
	svc, ok := l.services[name]
	if !ok {
		svc = &serviceLimit{
			lastAccess:    now.Add(-time.Duration(DefaultMinIntervalMS) * time.Millisecond),
			minIntervalMS: DefaultMinIntervalMS,
		}
		l.services[name] = svc
	}
	elapsedMS := now.Sub(svc.lastAccess).Milliseconds()
	var sleepFor time.Duration
	if elapsedMS < svc.minIntervalMS {
		sleepFor = time.Duration(svc.minIntervalMS-elapsedMS) * time.Millisecond
	}
	l.mu.Unlock()

	if sleepFor > 0 {
		l.sleep(sleepFor)
	}

	l.mu.Lock()
	svc.lastAccess = l.now()
	l.mu.Unlock()
}

// global is the process-wide limiter instance used by package-level
// helpers, matching the Rust implementation's Lazy<Mutex<...>> singleton.
var global = New()

// RegisterService registers a rate limit on the global limiter.
func RegisterService(name string, minIntervalMS int64) {
	global.RegisterService(name, minIntervalMS)
}

// RateLimit applies rate limiting on the global limiter.
func RateLimit(name string) {
	global.RateLimit(name)
}
