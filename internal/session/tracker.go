// Package session assembles stitch-counting runs: a live Tracker combines a
// timer with a counter set and, on save, freezes them into a models.Session
// recorded on the owning project.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/counter"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/timer"
)

// State is the lifecycle position of a Tracker.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateSaved     State = "saved"
	StateDiscarded State = "discarded"
)

// ErrClosed is returned for any change to a saved or discarded tracker.
var ErrClosed = fmt.Errorf("session: tracker closed: %w", apperr.ErrConflict)

// ErrNoCounters rejects saving a session without counters.
var ErrNoCounters = apperr.Invalidf("at least one counter is required to save a session")

// Saver records a finished session on its project.
type Saver interface {
	AppendSession(ctx context.Context, projectID string, s models.Session) (models.Project, error)
}

// SaveRequest carries the optional details entered when saving.
type SaveRequest struct {
	Notes       string `json:"notes"`
	IsMilestone bool   `json:"isMilestone"`
}

// View is a read-only snapshot of a tracker.
type View struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	State     State            `json:"state"`
	Seconds   int              `json:"seconds"`
	Running   bool             `json:"running"`
	Counters  map[string]int   `json:"counters"`
	OpenedAt  models.Timestamp `json:"openedAt"`
}

// Tracker is one in-progress session.
type Tracker struct {
	id        string
	projectID string
	saver     Saver
	clock     *timer.Timer
	baseCtx   context.Context
	openedAt  models.Timestamp

	mu       sync.Mutex
	state    State
	counters counter.Set
}

// NewTracker opens an idle tracker for projectID with counters seeded from
// defaults. The timer runs under ctx and stops when ctx is cancelled.
func NewTracker(ctx context.Context, projectID string, defaults []string, saver Saver, opts ...timer.Option) *Tracker {
	return &Tracker{
		id:        uuid.NewString(),
		projectID: projectID,
		saver:     saver,
		clock:     timer.New(opts...),
		baseCtx:   ctx,
		openedAt:  models.Now(),
		state:     StateIdle,
		counters:  counter.New(defaults...),
	}
}

func (t *Tracker) ID() string        { return t.id }
func (t *Tracker) ProjectID() string { return t.projectID }

// Start runs the timer.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed() {
		return ErrClosed
	}
	t.clock.Start(t.baseCtx)
	t.state = StateRunning
	return nil
}

// Pause stops the timer, keeping elapsed seconds.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed() {
		return ErrClosed
	}
	t.clock.Pause()
	if t.state == StateRunning {
		t.state = StatePaused
	}
	return nil
}

// ResetTimer stops the timer and zeroes it. Counters are kept.
func (t *Tracker) ResetTimer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed() {
		return ErrClosed
	}
	t.clock.Reset()
	t.state = StateIdle
	return nil
}

// AddCounter adds a counter at zero. Blank or duplicate names are ignored.
func (t *Tracker) AddCounter(name string) error {
	return t.withCounters(func(c *counter.Set) { c.Add(name) })
}

// RemoveCounter deletes a counter.
func (t *Tracker) RemoveCounter(name string) error {
	return t.withCounters(func(c *counter.Set) { c.Remove(name) })
}

// Increment adds amount to a counter.
func (t *Tracker) Increment(name string, amount int) error {
	return t.withCounters(func(c *counter.Set) { c.Increment(name, amount) })
}

// Decrement subtracts amount from a counter, never below zero.
func (t *Tracker) Decrement(name string, amount int) error {
	return t.withCounters(func(c *counter.Set) { c.Decrement(name, amount) })
}

// ResetCounter zeroes one counter.
func (t *Tracker) ResetCounter(name string) error {
	return t.withCounters(func(c *counter.Set) { c.Reset(name) })
}

// ResetCounters zeroes every counter, keeping the names.
func (t *Tracker) ResetCounters() error {
	return t.withCounters(func(c *counter.Set) { c.ResetAll() })
}

// View returns a snapshot of the tracker. A timer that stopped on its own
// (base context cancelled) leaves the tracker paused.
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.clock.Snapshot()
	if t.state == StateRunning && !snap.Running {
		t.state = StatePaused
	}
	return View{
		ID:        t.id,
		ProjectID: t.projectID,
		State:     t.state,
		Seconds:   snap.Seconds,
		Running:   snap.Running,
		Counters:  t.counters.Clone().Values,
		OpenedAt:  t.openedAt,
	}
}

// Save stops the timer and records the session on the project. Saving without
// counters fails with ErrNoCounters and leaves the tracker open. A failed write
// to storage still closes the tracker, since the project already holds the
// session in memory; the error is returned.
func (t *Tracker) Save(ctx context.Context, req SaveRequest) (models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed() {
		return models.Session{}, ErrClosed
	}
	if t.counters.Len() == 0 {
		return models.Session{}, ErrNoCounters
	}

	t.clock.Stop()
	if t.state == StateRunning {
		t.state = StatePaused
	}

	sess := models.Session{
		ID:          uuid.NewString(),
		CreatedAt:   models.Now(),
		Counters:    t.counters.Clone(),
		Seconds:     t.clock.Seconds(),
		Notes:       req.Notes,
		IsMilestone: req.IsMilestone,
	}

	_, err := t.saver.AppendSession(ctx, t.projectID, sess)
	if err != nil && !errors.Is(err, projects.ErrPersist) {
		return models.Session{}, fmt.Errorf("session: save: %w", err)
	}
	t.state = StateSaved
	return sess, err
}

// Discard abandons the tracker without recording anything.
func (t *Tracker) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock.Stop()
	if !t.closed() {
		t.state = StateDiscarded
	}
}

func (t *Tracker) withCounters(fn func(c *counter.Set)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed() {
		return ErrClosed
	}
	fn(&t.counters)
	return nil
}

func (t *Tracker) closed() bool {
	return t.state == StateSaved || t.state == StateDiscarded
}
