package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// Limiter is the rate-limiting capability consulted before mutation handlers
// proceed. Implementations count requests per key within a fixed window.
type Limiter interface {
	Check(key string, maxRequests int, window time.Duration) Result
}

type windowEntry struct {
	count     int
	resetTime time.Time
}

// FixedWindow is an in-memory fixed-window Limiter. Windows start at the
// first request for a key and reset fully once elapsed. Expired entries are
// treated as absent on access; a periodic sweep evicts them from the map.
type FixedWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	done    chan struct{}
	once    sync.Once
}

func NewFixedWindow() *FixedWindow {
	l := &FixedWindow{
		entries: make(map[string]*windowEntry),
		done:    make(chan struct{}),
	}
	go l.sweep(time.Minute)
	return l
}

func (l *FixedWindow) Check(key string, maxRequests int, window time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetTime) {
		entry = &windowEntry{count: 1, resetTime: now.Add(window)}
		l.entries[key] = entry
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetTime: entry.resetTime}
	}

	if entry.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetTime: entry.resetTime}
	}

	entry.count++
	return Result{Allowed: true, Remaining: maxRequests - entry.count, ResetTime: entry.resetTime}
}

// Stop terminates the background sweep.
func (l *FixedWindow) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *FixedWindow) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictExpired()
		}
	}
}

func (l *FixedWindow) evictExpired() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for key, entry := range l.entries {
		if now.After(entry.resetTime) {
			delete(l.entries, key)
		}
	}
}
