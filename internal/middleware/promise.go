package middleware

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/async"
	"github.com/roach88/mockstore/internal/engine"
)

// PendingEntry is a tracked operation that has not settled yet.
type PendingEntry struct {
	ID      int64
	Promise async.Thenable
}

// PromiseTracker invokes thunks with the store's dispatch and getState and
// tracks any Thenable they return until it settles.
//
// The thunk is still passed on unchanged, so a thunk middleware further down
// the chain invokes it a second time. Only the first invocation's result is
// tracked.
type PromiseTracker struct {
	log *slog.Logger
	ids *engine.Clock

	mu       sync.Mutex
	epoch    uint64 // bumped by ClearPromises
	all      []async.Thenable
	pending  []PendingEntry
	resolved []any
	rejected []error
}

// NewPromiseTracker creates an empty tracker.
func NewPromiseTracker(opts ...Option) *PromiseTracker {
	return &PromiseTracker{
		log: buildOptions(opts).logger,
		ids: engine.NewClock(),
	}
}

// Handle implements engine.Middleware.
func (pt *PromiseTracker) Handle(api engine.API, act any, next engine.Next) (any, error) {
	if thunk, ok := engine.AsThunk(act); ok {
		if t, ok := pt.invoke(thunk, api); ok {
			pt.track(t)
		}
	}
	return next(act)
}

func (pt *PromiseTracker) invoke(thunk engine.Thunk, api engine.API) (t async.Thenable, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			pt.log.Debug("thunk panicked", "panic", r)
			t, ok = nil, false
		}
	}()

	t, ok = thunk(api.Dispatch, api.GetState).(async.Thenable)
	return t, ok && !isNil(t)
}

// isNil also catches an interface holding a nil pointer, map, func or chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (pt *PromiseTracker) track(t async.Thenable) {
	pt.mu.Lock()
	// ids start at 0
	id := pt.ids.Next() - 1
	epoch := pt.epoch
	pt.all = append(pt.all, t)
	pt.pending = append(pt.pending, PendingEntry{ID: id, Promise: t})
	pt.mu.Unlock()

	pt.log.Debug("promise tracked", "id", id)

	t.OnSettle(
		func(v any) {
			pt.settle(epoch, id, func() { pt.resolved = append(pt.resolved, v) })
		},
		func(err error) {
			if err == nil {
				err = async.ErrRejected
			}
			pt.settle(epoch, id, func() { pt.rejected = append(pt.rejected, err) })
		},
	)
}

func (pt *PromiseTracker) settle(epoch uint64, id int64, record func()) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	// Operations tracked before the last ClearPromises no longer count.
	if epoch != pt.epoch {
		return
	}

	for i, p := range pt.pending {
		if p.ID == id {
			pt.pending = append(pt.pending[:i:i], pt.pending[i+1:]...)
			break
		}
	}
	record()
}

// Promises returns every tracked thenable in registration order.
func (pt *PromiseTracker) Promises() []async.Thenable {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return snapshot(pt.all)
}

// Pending returns the thenables that have not settled, in registration order.
func (pt *PromiseTracker) Pending() []async.Thenable {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	out := make([]async.Thenable, 0, len(pt.pending))
	for _, p := range pt.pending {
		out = append(out, p.Promise)
	}
	return out
}

// PendingEntries returns the pending operations with their ids.
func (pt *PromiseTracker) PendingEntries() []PendingEntry {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return snapshot(pt.pending)
}

// Resolved returns fulfillment values in settlement order.
func (pt *PromiseTracker) Resolved() []any {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return snapshot(pt.resolved)
}

// Rejected returns rejection reasons in settlement order.
func (pt *PromiseTracker) Rejected() []error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return snapshot(pt.rejected)
}

// ClearPromises empties all four views and restarts ids at 0. Returns the
// (empty) list of all promises.
func (pt *PromiseTracker) ClearPromises() []async.Thenable {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.epoch++
	pt.ids.Reset()
	pt.all = nil
	pt.pending = nil
	pt.resolved = nil
	pt.rejected = nil
	return []async.Thenable{}
}

// HasResolved reports whether every criterion matches some fulfillment value.
func (pt *PromiseTracker) HasResolved(criteria ...any) bool {
	return action.Has(criteria, pt.Resolved())
}
