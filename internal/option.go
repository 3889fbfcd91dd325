package internal

import "time"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config           *Config
	timelineThrottle time.Duration
}

func newApplication(opts ...Option) *application {
	app := &application{timelineThrottle: 2 * time.Second}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithTimelineThrottle sets the minimum gap between timeline.updated events
// for one project.
func WithTimelineThrottle(d time.Duration) Option {
	return func(a *application) {
		a.timelineThrottle = d
	}
}
