package bloc

import (
	"io"
	"log/slog"
	"time"
)

const defaultName = "bloc"

type config struct {
	name    string
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Bloc via the functional options pattern.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		name: defaultName,
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

// WithName sets the name used in logs, metric labels and snapshots.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the structured logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics attaches prometheus collectors created by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
