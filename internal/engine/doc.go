// Package engine implements the state container the mock store is built on.
//
// A Store holds one state value and a Reducer. Every Dispatch runs the action
// through an ordered list of Middleware stages; the last stage validates the
// action, applies the reducer and notifies subscribers.
//
// PIPELINE:
//
// Stages are fixed when the store is created (WithMiddleware) and run in
// order. Each stage receives the action and a Next continuation:
//
//	engine.MiddlewareFunc(func(api engine.API, act any, next engine.Next) (any, error) {
//		// before
//		res, err := next(act)
//		// after: state already reduced
//		return res, err
//	})
//
// A stage that does not call next stops the action; one that calls
// api.Dispatch starts a new action at the first stage.
//
// Thunks (ThunkMiddleware) are functions dispatched in place of actions.
// They never reach the reducer.
//
// INVARIANTS:
//   - Stage order never changes after New
//   - The reducer only ever sees actions that passed action.Validate
//   - A reducer cannot dispatch (ErrReducerDispatch)
//   - Subscribers run after the state is updated, against a snapshot of the
//     subscriber list taken before notification
//   - Nested dispatches deeper than WithMaxDepth fail with ErrDispatchDepth
package engine
