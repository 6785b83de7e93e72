package middleware

import (
	"log/slog"
	"sync"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

// AllowFunc decides whether an action may reach the reducer unchanged.
// It receives the state at dispatch time.
type AllowFunc func(state, act any) bool

// AllowAll lets every action through.
func AllowAll(any, any) bool { return true }

// Blocker records actions its AllowFunc rejects and replaces them with a
// wrapper action (see action.Wrap) before passing them on.
type Blocker struct {
	allow AllowFunc
	log   *slog.Logger

	mu      sync.Mutex
	blocked []any
}

// NewBlocker creates a Blocker. A nil allow lets every action through.
func NewBlocker(allow AllowFunc, opts ...Option) *Blocker {
	if allow == nil {
		allow = AllowAll
	}
	return &Blocker{allow: allow, log: buildOptions(opts).logger}
}

// Handle implements engine.Middleware.
func (b *Blocker) Handle(api engine.API, act any, next engine.Next) (any, error) {
	if !b.allow(api.GetState(), act) {
		b.mu.Lock()
		b.blocked = append(b.blocked, act)
		b.mu.Unlock()

		b.log.Debug("action blocked", "type", action.TypeOf(act))
		act = action.Wrap(act)
	}
	return next(act)
}

// Blocked returns the blocked actions in dispatch order.
func (b *Blocker) Blocked() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot(b.blocked)
}

// ClearBlocked empties the blocked log and returns the (empty) log.
func (b *Blocker) ClearBlocked() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = nil
	return []any{}
}

// HasBlocked reports whether every criterion matches some blocked action.
func (b *Blocker) HasBlocked(criteria ...any) bool {
	return action.Has(criteria, b.Blocked())
}
