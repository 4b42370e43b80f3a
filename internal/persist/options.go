package persist

import (
	"log/slog"
	"time"
)

// Option configures SaveRecommendations and GetRecommendations.
type Option func(*options)

type options struct {
	logger           *slog.Logger
	ids              IDGenerator
	now              func() time.Time
	minSchemaVersion int
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIDGenerator overrides the batch id generator (default UUIDv7Generator).
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithClock overrides the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSchemaVersionGuard makes the writer refuse to open a transaction when
// PRAGMA user_version is below minVersion. Zero (the default) disables the guard.
func WithSchemaVersionGuard(minVersion int) Option {
	return func(o *options) {
		o.minSchemaVersion = minVersion
	}
}
