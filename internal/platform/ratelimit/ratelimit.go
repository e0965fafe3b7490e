package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults for provider-backed calls: 3 per rolling 120 seconds per user.
const (
	DefaultLimit  = 3
	DefaultWindow = 120 * time.Second
)

// Limiter decides whether one more call for key fits in its window. An allowed call
// is recorded; a denied one is not.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Clock func() time.Time

// SlidingWindow is an in-process per-key sliding window log.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    Clock

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewSlidingWindow(limit int, window time.Duration, now Clock) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &SlidingWindow{limit: limit, window: window, now: now, hits: map[string][]time.Time{}}
}

func (w *SlidingWindow) Allow(_ context.Context, key string) (bool, error) {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := prune(w.hits[key], now.Add(-w.window))
	if len(kept) >= w.limit {
		w.hits[key] = kept
		return false, nil
	}
	w.hits[key] = append(kept, now)
	return true, nil
}

// Len is the number of live entries for key.
func (w *SlidingWindow) Len(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(prune(w.hits[key], w.now().Add(-w.window)))
}

// StartJanitor drops keys whose entries have all expired, every interval, until ctx is done.
// The returned channel is closed once the goroutine has exited.
func (w *SlidingWindow) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		interval = w.window
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep()
			}
		}
	}()
	return done
}

func (w *SlidingWindow) sweep() {
	cutoff := w.now().Add(-w.window)
	w.mu.Lock()
	defer w.mu.Unlock()
	for key, hits := range w.hits {
		if kept := prune(hits, cutoff); len(kept) == 0 {
			delete(w.hits, key)
		} else {
			w.hits[key] = kept
		}
	}
}

// prune keeps entries strictly after cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}
