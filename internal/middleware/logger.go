package middleware

import (
	"log/slog"
	"sync"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

// ActionLogger validates every action that reaches it and records the valid
// ones. An invalid action aborts the dispatch with the validation error.
type ActionLogger struct {
	log *slog.Logger

	mu      sync.Mutex
	actions []any
}

// NewActionLogger creates an empty logger.
func NewActionLogger(opts ...Option) *ActionLogger {
	return &ActionLogger{log: buildOptions(opts).logger}
}

// Handle implements engine.Middleware.
func (l *ActionLogger) Handle(_ engine.API, act any, next engine.Next) (any, error) {
	if err := action.Validate(act); err != nil {
		l.log.Debug("invalid action", "error", err)
		return nil, err
	}

	l.mu.Lock()
	l.actions = append(l.actions, act)
	l.mu.Unlock()

	return next(act)
}

// Actions returns the recorded actions in dispatch order.
func (l *ActionLogger) Actions() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return snapshot(l.actions)
}

// ClearActions empties the log and returns the (empty) log.
func (l *ActionLogger) ClearActions() []any {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = nil
	return []any{}
}

// HasActions reports whether every criterion matches some recorded action.
func (l *ActionLogger) HasActions(criteria ...any) bool {
	return action.Has(criteria, l.Actions())
}
