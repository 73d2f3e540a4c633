package clock

import (
	"context"
	"sync"
	"time"
)

// Sleeper pauses the caller. Retry and backoff paths go through it so
// tests can observe waits without actually waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real sleeps on the wall clock and returns early if ctx is cancelled.
type Real struct{}

// Sleep implements Sleeper
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Recorder is a Sleeper that returns immediately and remembers every
// requested duration.
type Recorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

// Sleep implements Sleeper
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.slept = append(r.slept, d)
	r.mu.Unlock()
	return ctx.Err()
}

// Durations returns a copy of the recorded sleeps in call order
func (r *Recorder) Durations() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.slept))
	copy(out, r.slept)
	return out
}
