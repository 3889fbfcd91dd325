// Package timer implements the elapsed-seconds stopwatch behind a tracking session.
package timer

import (
	"context"
	"sync"
	"time"
)

// Option configures a Timer.
type Option func(*Timer)

// WithInterval sets the tick period. Each tick adds exactly one second.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithOnTick registers fn to be called after every tick with the new total.
// fn runs on the tick goroutine, outside the timer lock.
func WithOnTick(fn func(seconds int)) Option {
	return func(t *Timer) {
		t.onTick = fn
	}
}

// Snapshot is a point-in-time view of a Timer.
type Snapshot struct {
	Seconds int  `json:"seconds"`
	Running bool `json:"running"`
}

// Timer counts whole seconds while running.
//
// Every transition out of running (Pause, Reset, Stop, or cancellation of the
// context given to Start) stops and joins the tick goroutine.
type Timer struct {
	interval time.Duration
	onTick   func(int)

	mu      sync.Mutex
	seconds int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a stopped timer at zero.
func New(opts ...Option) *Timer {
	t := &Timer{interval: time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins ticking. Calling Start on a running timer is a no-op.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.running = true

	go t.loop(childCtx, done)
}

// Pause stops ticking and keeps the elapsed seconds.
func (t *Timer) Pause() {
	t.halt()
}

// Reset stops ticking and zeroes the elapsed seconds.
func (t *Timer) Reset() {
	t.halt()
	t.mu.Lock()
	t.seconds = 0
	t.mu.Unlock()
}

// Stop is Pause under the name used by owners tearing the timer down.
func (t *Timer) Stop() {
	t.halt()
}

// Seconds returns the elapsed seconds.
func (t *Timer) Seconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seconds
}

// Running reports whether the timer is ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Snapshot returns seconds and running state read under one lock.
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{Seconds: t.seconds, Running: t.running}
}

func (t *Timer) halt() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.running = false
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (t *Timer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			if t.done == done {
				// Owner context went away without a Pause.
				t.running = false
				t.cancel = nil
				t.done = nil
			}
			t.mu.Unlock()
			return

		case <-ticker.C:
			t.mu.Lock()
			if t.done != done {
				t.mu.Unlock()
				return
			}
			t.seconds++
			s := t.seconds
			fn := t.onTick
			t.mu.Unlock()

			if fn != nil {
				fn(s)
			}
		}
	}
}
