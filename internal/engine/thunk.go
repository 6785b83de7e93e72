package engine

// Thunk is a deferred action. It is invoked with the store's dispatch and
// getState instead of reaching the reducer.
type Thunk func(dispatch Dispatch, getState GetState) any

// AsThunk reports whether v is a thunk, accepting both the named type and an
// unnamed function literal of the same signature.
func AsThunk(v any) (Thunk, bool) {
	switch fn := v.(type) {
	case Thunk:
		return fn, fn != nil
	case func(Dispatch, GetState) any:
		return fn, fn != nil
	default:
		return nil, false
	}
}

// ThunkMiddleware invokes thunks and returns their result without calling
// next. Every other action passes through.
func ThunkMiddleware() Middleware {
	return MiddlewareFunc(func(api API, act any, next Next) (any, error) {
		if thunk, ok := AsThunk(act); ok {
			return thunk(api.Dispatch, api.GetState), nil
		}
		return next(act)
	})
}
