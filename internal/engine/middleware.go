package engine

// Dispatch sends an action through the store's full middleware chain.
type Dispatch func(act any) (any, error)

// GetState returns the store's current state.
type GetState func() any

// Next continues an action down the chain from the current stage.
type Next func(act any) (any, error)

// API is the subset of the store a middleware may call. Dispatch re-enters
// the chain at its first stage.
type API struct {
	GetState GetState
	Dispatch Dispatch
}

// Middleware is one stage of the dispatch pipeline.
//
// Handle receives every action dispatched to the store. It may forward the
// action (or a replacement) with next, short-circuit by returning without
// calling next, or dispatch new actions through api.Dispatch.
type Middleware interface {
	Handle(api API, act any, next Next) (any, error)
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(api API, act any, next Next) (any, error)

// Handle calls f(api, act, next).
func (f MiddlewareFunc) Handle(api API, act any, next Next) (any, error) {
	return f(api, act, next)
}

// pipeline is an immutable ordered list of stages ending in a terminal
// dispatch.
type pipeline struct {
	stages   []Middleware
	api      API
	terminal Next
}

func newPipeline(stages []Middleware, api API, terminal Next) *pipeline {
	var copied []Middleware
	for _, mw := range stages {
		if mw != nil {
			copied = append(copied, mw)
		}
	}
	return &pipeline{stages: copied, api: api, terminal: terminal}
}

func (p *pipeline) dispatch(act any) (any, error) {
	return p.run(0, act)
}

func (p *pipeline) run(i int, act any) (any, error) {
	if i >= len(p.stages) {
		return p.terminal(act)
	}
	return p.stages[i].Handle(p.api, act, func(next any) (any, error) {
		return p.run(i+1, next)
	})
}
