package todo

import (
	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

// Reducer is the application's root reducer.
var Reducer = engine.CombineReducers(map[string]engine.Reducer{
	KeyTodos:  todos,
	KeyFilter: visibilityFilter,
	KeyStatus: status,
})

func todos(state, act any) any {
	list, ok := state.([]Todo)
	if !ok {
		list = []Todo{}
	}

	switch action.TypeOf(act) {
	case AddTodo:
		id, _ := intField(act, "id")
		text, _ := action.Field(act, "text")
		s, _ := text.(string)

		next := make([]Todo, len(list), len(list)+1)
		copy(next, list)
		return append(next, Todo{ID: id, Text: s})

	case ToggleTodo:
		id, ok := intField(act, "id")
		if !ok {
			return list
		}
		next := make([]Todo, len(list))
		for i, t := range list {
			if t.ID == id {
				t.Completed = !t.Completed
			}
			next[i] = t
		}
		return next

	case FetchTodosSuccess:
		fetched, _ := action.Field(act, "todos")
		if items, ok := fetched.([]Todo); ok {
			return append([]Todo{}, items...)
		}
		return list
	}
	return list
}

func visibilityFilter(state, act any) any {
	current, ok := state.(string)
	if !ok {
		current = ShowAll
	}
	if action.TypeOf(act) != SetVisibilityFilter {
		return current
	}
	switch f, _ := action.Field(act, "filter"); f {
	case ShowAll, ShowActive, ShowCompleted:
		return f
	}
	return current
}

func status(state, act any) any {
	current, ok := state.(string)
	if !ok {
		current = StatusIdle
	}
	switch action.TypeOf(act) {
	case FetchTodosRequest:
		return StatusLoading
	case FetchTodosSuccess:
		return StatusIdle
	case FetchTodosFailure:
		return StatusFailed
	}
	return current
}

// intField reads a numeric action field. Actions decoded from YAML or JSON
// carry other numeric types than the creators in this package.
func intField(act any, key string) (int, bool) {
	v, _ := action.Field(act, key)
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
