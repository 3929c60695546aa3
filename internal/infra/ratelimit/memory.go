package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

type windowState struct {
	count     int
	windowEnd time.Time
}

// memoryLimiter keeps counters in process. Suitable for a single instance.
type memoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]windowState

	stopCh chan struct{}
	once   sync.Once
}

// NewMemoryLimiter builds an in-process limiter and starts its expiry sweeper.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	l := newMemoryLimiter(limit, window, time.Now)
	go l.sweepLoop()

	return l
}

func newMemoryLimiter(limit int, window time.Duration, now func() time.Time) *memoryLimiter {
	if window <= 0 {
		window = time.Minute
	}

	return &memoryLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		entries: make(map[string]windowState),
		stopCh:  make(chan struct{}),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.entries[key]
	if !ok || !now.Before(state.windowEnd) {
		state = windowState{windowEnd: now.Add(l.window)}
	}

	if state.count >= l.limit {
		return Decision{Allowed: false, Count: state.count, Limit: l.limit, WindowEnd: state.windowEnd}
	}

	state.count++
	l.entries[key] = state

	return Decision{Allowed: true, Count: state.count, Limit: l.limit, WindowEnd: state.windowEnd}
}

func (l *memoryLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

func (l *memoryLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, state := range l.entries {
		if !now.Before(state.windowEnd) {
			delete(l.entries, key)
		}
	}
}

func (l *memoryLimiter) Close() error {
	l.once.Do(func() {
		close(l.stopCh)
	})

	return nil
}
