// Package todo is a small todo application written against the engine's
// reducer and thunk types. Its tests drive it through a mock store the way
// an application's own tests would.
package todo

import (
	"github.com/roach88/mockstore/internal/action"
)

// Action types.
const (
	AddTodo             = "ADD_TODO"
	ToggleTodo          = "TOGGLE_TODO"
	SetVisibilityFilter = "SET_VISIBILITY_FILTER"
	FetchTodosRequest   = "FETCH_TODOS_REQUEST"
	FetchTodosSuccess   = "FETCH_TODOS_SUCCESS"
	FetchTodosFailure   = "FETCH_TODOS_FAILURE"
)

// Visibility filters.
const (
	ShowAll       = "SHOW_ALL"
	ShowActive    = "SHOW_ACTIVE"
	ShowCompleted = "SHOW_COMPLETED"
)

// Fetch status values.
const (
	StatusIdle    = "idle"
	StatusLoading = "loading"
	StatusFailed  = "failed"
)

// State keys.
const (
	KeyTodos  = "todos"
	KeyFilter = "visibilityFilter"
	KeyStatus = "status"
)

// Todo is one item of the list.
type Todo struct {
	ID        int
	Text      string
	Completed bool
}

// NewAddTodo creates an ADD_TODO action.
func NewAddTodo(id int, text string) action.Action {
	return action.New(AddTodo, "id", id, "text", text)
}

// NewToggleTodo creates a TOGGLE_TODO action.
func NewToggleTodo(id int) action.Action {
	return action.New(ToggleTodo, "id", id)
}

// NewSetVisibilityFilter creates a SET_VISIBILITY_FILTER action.
func NewSetVisibilityFilter(filter string) action.Action {
	return action.New(SetVisibilityFilter, "filter", filter)
}

// Todos returns the todo list of a root state.
func Todos(state any) []Todo {
	root, _ := state.(map[string]any)
	todos, _ := root[KeyTodos].([]Todo)
	return todos
}

// Filter returns the visibility filter of a root state.
func Filter(state any) string {
	root, _ := state.(map[string]any)
	if f, ok := root[KeyFilter].(string); ok {
		return f
	}
	return ShowAll
}

// Status returns the fetch status of a root state.
func Status(state any) string {
	root, _ := state.(map[string]any)
	if s, ok := root[KeyStatus].(string); ok {
		return s
	}
	return StatusIdle
}

// VisibleTodos returns the todos the current filter shows, in list order.
func VisibleTodos(state any) []Todo {
	var visible []Todo
	filter := Filter(state)
	for _, t := range Todos(state) {
		switch {
		case filter == ShowActive && t.Completed:
		case filter == ShowCompleted && !t.Completed:
		default:
			visible = append(visible, t)
		}
	}
	return visible
}
