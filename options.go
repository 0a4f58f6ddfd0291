package directory

import (
	"log/slog"
	"time"
)

// Option configures a Directory at construction time, following the
// functional options pattern.
type Option func(*Directory)

// WithLogger sets a structured logger for directory operations. Without it,
// logging is discarded.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	dir := directory.New(directory.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the time source used for entry timestamps. Intended
// for tests that need deterministic CreatedAt/ModifiedAt values.
func WithClock(clock func() time.Time) Option {
	return func(d *Directory) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithIndexing enables or disables the attribute equality index consulted by
// subtree searches. Indexing only changes lookup cost, never results; it
// defaults to enabled.
func WithIndexing(enabled bool) Option {
	return func(d *Directory) {
		d.indexingOn = enabled
	}
}

// WithDefaultSchema registers the built-in minimal schema covering common
// object classes (person, groupOfNames, organizationalUnit, organization,
// domain) and their attribute types.
func WithDefaultSchema() Option {
	return func(d *Directory) {
		d.registerSchemaLocked(DefaultSchema())
	}
}
