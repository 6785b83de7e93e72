package middleware

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

// OrphanDetector records actions dispatched while the state read at dispatch
// time deep-equals the state read at the previous dispatch. The first action
// it sees is always recorded.
//
// Both reads happen before the reducer runs, so an action is judged by
// whether the previous action changed the state, not by its own effect.
type OrphanDetector struct {
	log *slog.Logger

	mu       sync.Mutex
	captured bool
	previous any
	orphans  []any
}

// NewOrphanDetector creates an empty detector.
func NewOrphanDetector(opts ...Option) *OrphanDetector {
	return &OrphanDetector{log: buildOptions(opts).logger}
}

// Handle implements engine.Middleware.
func (o *OrphanDetector) Handle(api engine.API, act any, next engine.Next) (any, error) {
	current := api.GetState()

	o.mu.Lock()
	if !o.captured || reflect.DeepEqual(o.previous, current) {
		o.orphans = append(o.orphans, act)
		o.log.Debug("orphan action", "type", action.TypeOf(act))
	}
	o.previous = current
	o.captured = true
	o.mu.Unlock()

	return next(act)
}

// Orphans returns the recorded orphan actions in dispatch order.
func (o *OrphanDetector) Orphans() []any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return snapshot(o.orphans)
}

// ClearOrphans empties the orphan log and returns the (empty) log. The
// captured state is kept.
func (o *OrphanDetector) ClearOrphans() []any {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orphans = nil
	return []any{}
}

// HasOrphans reports whether every criterion matches some orphan action.
func (o *OrphanDetector) HasOrphans(criteria ...any) bool {
	return action.Has(criteria, o.Orphans())
}
