package todo

import (
	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/async"
	"github.com/roach88/mockstore/internal/engine"
)

// Source loads the todo list from wherever it is kept.
type Source func() ([]Todo, error)

// FetchTodos returns a thunk that loads the list from src.
//
// The thunk dispatches FETCH_TODOS_REQUEST, runs src off the loop and then
// dispatches FETCH_TODOS_SUCCESS or FETCH_TODOS_FAILURE. It returns the
// promise of that final dispatch, rejected with the source's error on
// failure. While a fetch is in flight the thunk does nothing and returns nil.
func FetchTodos(loop *async.Loop, src Source) engine.Thunk {
	return func(dispatch engine.Dispatch, getState engine.GetState) any {
		if Status(getState()) == StatusLoading {
			return nil
		}
		if _, err := dispatch(action.New(FetchTodosRequest)); err != nil {
			return async.Rejected(loop, err)
		}

		load := async.Go(loop, func() (any, error) {
			items, err := src()
			if err != nil {
				return nil, err
			}
			return items, nil
		})
		return load.Then(
			func(items any) (any, error) {
				return dispatch(action.New(FetchTodosSuccess, "todos", items))
			},
			func(err error) (any, error) {
				if _, derr := dispatch(action.New(FetchTodosFailure, "error", err.Error())); derr != nil {
					return nil, derr
				}
				return nil, err
			},
		)
	}
}
