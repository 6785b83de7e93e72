// Package middleware provides the recording stages of the mock store's
// dispatch pipeline.
//
// Each stage is an engine.Middleware that owns its recording state:
//
//   - Blocker: vetoes actions with a caller predicate, records the originals
//     and forwards a wrapper action instead
//   - PromiseTracker: invokes thunks and tracks the thenables they return
//   - ActionLogger: validates and records every action reaching it
//   - OrphanDetector: records actions dispatched while state had not changed
//     since the previous dispatch
//
// Getters return copies. Clearing one stage never touches another.
package middleware

import (
	"io"
	"log/slog"
	"slices"
)

// Option configures a recording middleware.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug diagnostics.
// Default: discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// snapshot returns a non-nil copy of log.
func snapshot[T any](log []T) []T {
	if log == nil {
		return []T{}
	}
	return slices.Clone(log)
}
