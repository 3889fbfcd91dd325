package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/models"
	"github.com/starford/craftfolder/internal/projects"
	"github.com/starford/craftfolder/internal/timer"
)

// Projects is what the manager needs from the project store.
type Projects interface {
	Saver
	Get(id string) (models.Project, error)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimerOptions applies opts to every tracker timer.
func WithTimerOptions(opts ...timer.Option) ManagerOption {
	return func(m *Manager) {
		m.timerOpts = append(m.timerOpts, opts...)
	}
}

// WithTickHook is called on every timer tick of every tracker.
func WithTickHook(fn func(v TickEvent)) ManagerOption {
	return func(m *Manager) {
		m.onTick = fn
	}
}

// WithSavedHook is called after a tracker's session has been recorded.
func WithSavedHook(fn func(projectID string, s models.Session)) ManagerOption {
	return func(m *Manager) {
		m.onSaved = fn
	}
}

// TickEvent reports the elapsed seconds of a running tracker.
type TickEvent struct {
	TrackerID string `json:"trackerId"`
	ProjectID string `json:"projectId"`
	Seconds   int    `json:"seconds"`
}

// Manager keeps the live trackers. Saved and discarded trackers are dropped
// from the registry.
type Manager struct {
	ctx       context.Context
	projects  Projects
	logger    *slog.Logger
	timerOpts []timer.Option
	onTick    func(TickEvent)
	onSaved   func(string, models.Session)

	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewManager creates a manager whose timers run under ctx.
func NewManager(ctx context.Context, p Projects, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		ctx:      ctx,
		projects: p,
		logger:   logger,
		trackers: make(map[string]*Tracker),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts an idle tracker for projectID, seeded with the project's
// default counters.
func (m *Manager) Open(projectID string) (*Tracker, error) {
	p, err := m.projects.Get(projectID)
	if err != nil {
		return nil, err
	}

	var t *Tracker
	opts := append([]timer.Option{}, m.timerOpts...)
	if m.onTick != nil {
		opts = append(opts, timer.WithOnTick(func(s int) {
			m.onTick(TickEvent{TrackerID: t.ID(), ProjectID: projectID, Seconds: s})
		}))
	}
	t = NewTracker(m.ctx, projectID, p.DefaultCounters(), m.projects, opts...)

	m.mu.Lock()
	m.trackers[t.ID()] = t
	m.mu.Unlock()

	m.logger.Debug("session: tracker opened",
		slog.String("tracker_id", t.ID()),
		slog.String("project_id", projectID))
	return t, nil
}

// Get returns the live tracker with id.
func (m *Manager) Get(id string) (*Tracker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trackers[id]
	if !ok {
		return nil, fmt.Errorf("session: tracker %s: %w", id, apperr.ErrNotFound)
	}
	return t, nil
}

// List returns views of every live tracker, oldest first.
func (m *Manager) List() []View {
	m.mu.Lock()
	ts := make([]*Tracker, 0, len(m.trackers))
	for _, t := range m.trackers {
		ts = append(ts, t)
	}
	m.mu.Unlock()

	out := make([]View, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.View())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt != out[j].OpenedAt {
			return out[i].OpenedAt < out[j].OpenedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Save records the tracker's session and drops the tracker.
func (m *Manager) Save(ctx context.Context, id string, req SaveRequest) (models.Session, error) {
	t, err := m.Get(id)
	if err != nil {
		return models.Session{}, err
	}

	sess, err := t.Save(ctx, req)
	if err != nil && !errors.Is(err, projects.ErrPersist) {
		return models.Session{}, err
	}

	m.remove(id)
	m.logger.Info("session: saved",
		slog.String("project_id", t.ProjectID()),
		slog.String("session_id", sess.ID),
		slog.Int("seconds", sess.Seconds))
	if m.onSaved != nil {
		m.onSaved(t.ProjectID(), sess)
	}
	return sess, err
}

// Discard abandons a tracker.
func (m *Manager) Discard(id string) error {
	t, err := m.Get(id)
	if err != nil {
		return err
	}
	t.Discard()
	m.remove(id)
	return nil
}

// Close discards every live tracker and stops its timer.
func (m *Manager) Close() {
	m.mu.Lock()
	ts := m.trackers
	m.trackers = make(map[string]*Tracker)
	m.mu.Unlock()

	for _, t := range ts {
		t.Discard()
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.trackers, id)
	m.mu.Unlock()
}
