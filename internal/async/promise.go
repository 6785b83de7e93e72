package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrRejected is the reason recorded when a promise is rejected without one.
var ErrRejected = errors.New("async: promise rejected")

// State is the settlement state of a promise.
type State int

const (
	StatePending State = iota
	StateFulfilled
	StateRejected
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Thenable is the capability a thunk's return value must have to be tracked
// as an asynchronous operation.
//
// OnSettle registers callbacks for fulfillment and rejection. Exactly one of
// them is called, once, after the operation settles. Either may be nil.
type Thenable interface {
	OnSettle(onFulfilled func(any), onRejected func(error))
}

// PanicError is the rejection reason of a promise whose handler panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: handler panicked: %v", e.Value)
}

type settleHandler struct {
	onFulfilled func(any)
	onRejected  func(error)
}

// Promise is a single-assignment result settled through a Loop.
//
// Handlers never run synchronously: Resolve, Reject and OnSettle post them
// to the loop, so they run the next time the loop is driven.
type Promise struct {
	loop *Loop

	mu       sync.Mutex
	state    State
	locked   bool // resolved with a thenable, waiting for it
	value    any
	reason   error
	handlers []settleHandler
}

// NewPromise creates a pending promise bound to loop.
// A nil loop gets a private loop, driven only by Await.
func NewPromise(loop *Loop) *Promise {
	if loop == nil {
		loop = NewLoop()
	}
	return &Promise{loop: loop}
}

// Resolved returns a promise already fulfilled with v.
func Resolved(loop *Loop, v any) *Promise {
	p := NewPromise(loop)
	p.Resolve(v)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected(loop *Loop, err error) *Promise {
	p := NewPromise(loop)
	p.Reject(err)
	return p
}

// Go runs fn on a new goroutine and settles the returned promise with its
// result. Handlers still run on the loop.
func Go(loop *Loop, fn func() (any, error)) *Promise {
	p := NewPromise(loop)
	go func() {
		v, err := callRecovered(fn)
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p
}

// Loop returns the loop the promise posts its handlers to.
func (p *Promise) Loop() *Loop {
	return p.loop
}

// Resolve fulfills the promise with v. If v is itself a Thenable the promise
// adopts its eventual outcome. Only the first Resolve or Reject has effect.
func (p *Promise) Resolve(v any) {
	p.mu.Lock()
	if p.state != StatePending || p.locked {
		p.mu.Unlock()
		return
	}

	if t, ok := v.(Thenable); ok {
		if t == Thenable(p) {
			p.mu.Unlock()
			p.Reject(errors.New("async: promise resolved with itself"))
			return
		}
		p.locked = true
		p.mu.Unlock()
		t.OnSettle(p.fulfill, p.rejectAdopted)
		return
	}
	p.mu.Unlock()

	p.fulfill(v)
}

// Reject rejects the promise with err, or ErrRejected when err is nil.
// Only the first Resolve or Reject has effect.
func (p *Promise) Reject(err error) {
	p.mu.Lock()
	if p.locked {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.settle(StateRejected, nil, err)
}

func (p *Promise) fulfill(v any) {
	p.settle(StateFulfilled, v, nil)
}

func (p *Promise) rejectAdopted(err error) {
	p.settle(StateRejected, nil, err)
}

func (p *Promise) settle(state State, v any, err error) {
	if state == StateRejected && err == nil {
		err = ErrRejected
	}

	p.mu.Lock()
	if p.state != StatePending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.value = v
	p.reason = err
	handlers := p.handlers
	p.handlers = nil
	p.mu.Unlock()

	for _, h := range handlers {
		p.post(h)
	}
}

// OnSettle implements Thenable. The matching callback runs as a loop job.
func (p *Promise) OnSettle(onFulfilled func(any), onRejected func(error)) {
	h := settleHandler{onFulfilled: onFulfilled, onRejected: onRejected}

	p.mu.Lock()
	if p.state == StatePending {
		p.handlers = append(p.handlers, h)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.post(h)
}

func (p *Promise) post(h settleHandler) {
	p.mu.Lock()
	state, v, err := p.state, p.value, p.reason
	p.mu.Unlock()

	p.loop.Post(func() {
		switch state {
		case StateFulfilled:
			if h.onFulfilled != nil {
				h.onFulfilled(v)
			}
		case StateRejected:
			if h.onRejected != nil {
				h.onRejected(err)
			}
		}
	})
}

// Then returns a promise settled with the result of the matching handler.
//
// A nil onFulfilled passes the value through; a nil onRejected passes the
// rejection through. A handler that returns an error or panics rejects the
// returned promise. A handler may return a Thenable, which is adopted.
func (p *Promise) Then(onFulfilled func(any) (any, error), onRejected func(error) (any, error)) *Promise {
	next := NewPromise(p.loop)

	p.OnSettle(
		func(v any) {
			if onFulfilled == nil {
				next.Resolve(v)
				return
			}
			next.settleFrom(callRecovered(func() (any, error) { return onFulfilled(v) }))
		},
		func(err error) {
			if onRejected == nil {
				next.Reject(err)
				return
			}
			next.settleFrom(callRecovered(func() (any, error) { return onRejected(err) }))
		},
	)

	return next
}

// Catch is Then with only a rejection handler.
func (p *Promise) Catch(onRejected func(error) (any, error)) *Promise {
	return p.Then(nil, onRejected)
}

func (p *Promise) settleFrom(v any, err error) {
	if err != nil {
		p.Reject(err)
		return
	}
	p.Resolve(v)
}

// Await drives the loop until the promise settles and returns its outcome.
//
// Await observes the settlement through OnSettle like any other handler, so
// handlers registered before the call run before Await returns.
func (p *Promise) Await(ctx context.Context) (any, error) {
	var done atomic.Bool
	p.OnSettle(func(any) { done.Store(true) }, func(error) { done.Store(true) })

	if err := p.loop.RunUntil(ctx, done.Load); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRejected {
		return nil, p.reason
	}
	return p.value, nil
}

// State returns the current settlement state.
func (p *Promise) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Value returns the fulfillment value, or nil.
func (p *Promise) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Reason returns the rejection reason, or nil.
func (p *Promise) Reason() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

func callRecovered(fn func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
