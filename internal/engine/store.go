package engine

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/mockstore/internal/action"
)

const (
	// InitType is the type of the action the reducer receives when a store
	// is created. It does not pass through the middleware chain.
	InitType = "@@mockstore/INIT"

	// ReplaceType is the type of the action the new reducer receives from
	// ReplaceReducer.
	ReplaceType = "@@mockstore/REPLACE"
)

type listener struct {
	id int64
	fn func()
}

// Store holds application state and runs every dispatched action through an
// ordered middleware pipeline before reducing it.
//
// Thread-safety model:
//   - GetState, Subscribe: safe from any goroutine
//   - Dispatch: meant to be driven by one goroutine at a time; a Dispatch
//     that arrives while a reducer runs fails with ErrReducerDispatch
type Store struct {
	mu          sync.Mutex
	reducer     Reducer
	state       any
	listeners   []listener
	dispatching bool

	ids    *Clock
	chain  *pipeline
	depth  *depthLimiter
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	middleware []Middleware
	logger     *slog.Logger
	maxDepth   int
}

// WithMiddleware appends stages to the dispatch pipeline. Stages run in the
// order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *storeConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithMaxDepth bounds how deeply Dispatch calls may nest, counting every
// dispatch a middleware or thunk makes while another is in progress.
// Default: DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
// Default: discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a store. A nil reducer is replaced by Identity.
//
// The reducer is called once with an InitType action so that reducers can
// fill in defaults for a nil initial state. The middleware pipeline is built
// after that and never changes.
func New(reducer Reducer, initial any, opts ...Option) *Store {
	cfg := storeConfig{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if reducer == nil {
		reducer = Identity
	}

	s := &Store{
		reducer: reducer,
		ids:     NewClock(),
		depth:   newDepthLimiter(cfg.maxDepth),
		logger:  cfg.logger,
	}
	s.state = reducer(initial, action.New(InitType))

	api := API{GetState: s.GetState, Dispatch: s.Dispatch}
	s.chain = newPipeline(cfg.middleware, api, s.reduce)

	return s
}

// Dispatch sends act through the middleware pipeline.
//
// The value returned is whatever the pipeline returns: the action itself
// when it reached the reducer, or the result of a middleware that handled it.
//
// A dispatch nested deeper than the store's max depth fails with an error
// matching ErrDispatchDepth before any middleware sees it.
func (s *Store) Dispatch(act any) (any, error) {
	if err := s.depth.enter(action.TypeOf(act)); err != nil {
		s.logger.Warn("dispatch depth exceeded",
			"type", action.TypeOf(act),
			"limit", s.depth.Max(),
		)
		return nil, err
	}
	defer s.depth.leave()

	return s.chain.dispatch(act)
}

// reduce is the terminal stage of the pipeline.
func (s *Store) reduce(act any) (any, error) {
	if err := action.Validate(act); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return nil, newReducerDispatchError(action.TypeOf(act))
	}
	s.dispatching = true
	reducer, prev := s.reducer, s.state
	s.mu.Unlock()

	next := s.applyReducer(reducer, prev, act)

	s.mu.Lock()
	s.state = next
	listeners := make([]listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Debug("action reduced",
		"type", action.TypeOf(act),
		"listeners", len(listeners),
	)

	for _, l := range listeners {
		l.fn()
	}

	return act, nil
}

func (s *Store) applyReducer(reducer Reducer, state, act any) any {
	defer func() {
		s.mu.Lock()
		s.dispatching = false
		s.mu.Unlock()
	}()
	return reducer(state, act)
}

// GetState returns the current state.
func (s *Store) GetState() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after every reduced action and returns
// a function that removes it. Listeners added or removed during notification
// take effect from the next dispatch.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	id := s.ids.Next()

	s.mu.Lock()
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ReplaceReducer swaps the reducer and lets it see a ReplaceType action.
// The action bypasses the middleware chain. Listeners are notified.
func (s *Store) ReplaceReducer(next Reducer) {
	if next == nil {
		next = Identity
	}

	s.mu.Lock()
	s.reducer = next
	s.mu.Unlock()

	if _, err := s.reduce(action.New(ReplaceType)); err != nil {
		s.logger.Warn("replace reducer", "error", err)
	}
}
