// Package mockstore builds instrumented stores for tests.
//
// New takes the application's own middlewares and returns a Constructor.
// Every store the constructor returns has fresh recording state and runs
// each action through
//
//	Block → Promise → caller middlewares… → Logger → Orphan → reducer
//
// so a test can assert on what was dispatched, blocked, left without effect
// or started asynchronously:
//
//	create := mockstore.New([]engine.Middleware{engine.ThunkMiddleware()})
//	store := create(map[string]any{}, reducer, nil)
//	store.Dispatch(action.New("ADD_TODO", "text", "milk"))
//	store.HasActions("ADD_TODO") // true
package mockstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/mockstore/internal/async"
	"github.com/roach88/mockstore/internal/engine"
	"github.com/roach88/mockstore/internal/middleware"
)

// Constructor creates an instrumented store.
//
// initialState may be a value or a func() any, called once. A nil reducer
// leaves state unchanged; a nil allow blocks nothing.
type Constructor func(initialState any, reducer engine.Reducer, allow middleware.AllowFunc) *Store

// Option configures the stores a Constructor builds.
type Option func(*config)

type config struct {
	logger *slog.Logger
	loop   *async.Loop
	ids    IDGenerator
}

// WithLogger sets the logger handed to the engine and every recording
// middleware. Default: discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoop makes every constructed store share loop. By default each store
// gets its own.
func WithLoop(loop *async.Loop) Option {
	return func(c *config) {
		c.loop = loop
	}
}

// WithSessionIDs sets the generator for Store.SessionID.
// Default: UUIDv7Generator.
func WithSessionIDs(ids IDGenerator) Option {
	return func(c *config) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// New returns a Constructor that places extra between the promise tracker
// and the action logger. The slice is copied.
func New(extra []engine.Middleware, opts ...Option) Constructor {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	caller := append([]engine.Middleware(nil), extra...)

	return func(initialState any, reducer engine.Reducer, allow middleware.AllowFunc) *Store {
		return build(cfg, caller, initialState, reducer, allow)
	}
}

func build(cfg config, caller []engine.Middleware, initialState any, reducer engine.Reducer, allow middleware.AllowFunc) *Store {
	loop := cfg.loop
	if loop == nil {
		loop = async.NewLoop()
	}

	sessionID := cfg.ids.Generate()
	logger := cfg.logger.With("session", sessionID)
	mwOpt := middleware.WithLogger(logger)

	s := &Store{
		blocker:   middleware.NewBlocker(allow, mwOpt),
		tracker:   middleware.NewPromiseTracker(mwOpt),
		logger:    middleware.NewActionLogger(mwOpt),
		orphans:   middleware.NewOrphanDetector(mwOpt),
		loop:      loop,
		sessionID: sessionID,
		log:       logger,
	}

	chain := make([]engine.Middleware, 0, len(caller)+4)
	chain = append(chain, s.blocker, s.tracker)
	chain = append(chain, caller...)
	chain = append(chain, s.logger, s.orphans)

	initialState = produce(initialState)

	s.Store = engine.New(reducer, initialState,
		engine.WithMiddleware(chain...),
		engine.WithLogger(logger),
	)

	logger.Debug("mock store created", "middlewares", len(chain))
	return s
}

// Store is an engine.Store that records everything dispatched to it.
type Store struct {
	*engine.Store

	blocker *middleware.Blocker
	tracker *middleware.PromiseTracker
	logger  *middleware.ActionLogger
	orphans *middleware.OrphanDetector

	loop      *async.Loop
	sessionID string
	log       *slog.Logger
}

// Actions returns every valid action that reached the logger, in order.
func (s *Store) Actions() []any { return s.logger.Actions() }

// HasActions reports whether every criterion matches a logged action.
func (s *Store) HasActions(criteria ...any) bool { return s.logger.HasActions(criteria...) }

// ClearActions empties the action log.
func (s *Store) ClearActions() []any { return s.logger.ClearActions() }

// Orphans returns actions dispatched while state was unchanged.
func (s *Store) Orphans() []any { return s.orphans.Orphans() }

// HasOrphans reports whether every criterion matches an orphan action.
func (s *Store) HasOrphans(criteria ...any) bool { return s.orphans.HasOrphans(criteria...) }

// ClearOrphans empties the orphan log.
func (s *Store) ClearOrphans() []any { return s.orphans.ClearOrphans() }

// Promises returns every tracked thenable.
func (s *Store) Promises() []async.Thenable { return s.tracker.Promises() }

// Pending returns the tracked thenables that have not settled.
func (s *Store) Pending() []async.Thenable { return s.tracker.Pending() }

// Resolved returns fulfillment values in settlement order.
func (s *Store) Resolved() []any { return s.tracker.Resolved() }

// Rejected returns rejection reasons in settlement order.
func (s *Store) Rejected() []error { return s.tracker.Rejected() }

// ClearPromises empties every promise view.
func (s *Store) ClearPromises() []async.Thenable { return s.tracker.ClearPromises() }

// Blocked returns the original actions the allow predicate rejected.
func (s *Store) Blocked() []any { return s.blocker.Blocked() }

// HasBlocked reports whether every criterion matches a blocked action.
func (s *Store) HasBlocked(criteria ...any) bool { return s.blocker.HasBlocked(criteria...) }

// ClearBlocked empties the blocked log.
func (s *Store) ClearBlocked() []any { return s.blocker.ClearBlocked() }

// Loop returns the loop the store's promises should settle through.
func (s *Store) Loop() *async.Loop { return s.loop }

// SessionID identifies this construction in logs and archived recordings.
func (s *Store) SessionID() string { return s.sessionID }

// Settle drives the loop until no tracked promise is pending and no job is
// queued. A promise that never settles blocks until ctx is done.
func (s *Store) Settle(ctx context.Context) error {
	err := s.loop.RunUntil(ctx, func() bool {
		return len(s.tracker.Pending()) == 0 && s.loop.Len() == 0
	})
	if err != nil {
		return fmt.Errorf("settle %s: %w", s.sessionID, err)
	}
	s.log.Debug("store settled", "promises", len(s.tracker.Promises()))
	return nil
}

// Go starts fn on a goroutine and returns a promise bound to the store's
// loop, for thunks that do real concurrent work.
func (s *Store) Go(fn func() (any, error)) *async.Promise {
	return async.Go(s.loop, fn)
}

// Promise returns a pending promise bound to the store's loop.
func (s *Store) Promise() *async.Promise {
	return async.NewPromise(s.loop)
}

// ensure the recording stages stay engine middlewares
var (
	_ engine.Middleware = (*middleware.Blocker)(nil)
	_ engine.Middleware = (*middleware.PromiseTracker)(nil)
	_ engine.Middleware = (*middleware.ActionLogger)(nil)
	_ engine.Middleware = (*middleware.OrphanDetector)(nil)
	_ async.Thenable    = (*async.Promise)(nil)
)

// produce calls v when it is a func taking nothing and returning one value,
// such as func() any or func() map[string]any. Anything else is returned
// as is.
func produce(v any) any {
	if fn, ok := v.(func() any); ok && fn != nil {
		return fn()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return v
	}
	if typ := rv.Type(); typ.NumIn() != 0 || typ.NumOut() != 1 || typ.IsVariadic() {
		return v
	}
	return rv.Call(nil)[0].Interface()
}
