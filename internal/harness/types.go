package harness

import (
	"github.com/roach88/mockstore/internal/mockstore"
)

// Step kinds recorded in the trace.
const (
	StepDispatch = "dispatch"
	StepAsync    = "async"
	StepClear    = "clear"
	StepSettle   = "settle"
)

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Kind  string `json:"kind"`
	Type  any    `json:"type,omitempty"`  // action type for dispatch and async
	Error string `json:"error,omitempty"` // dispatch error, expected or not
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// RunID identifies this execution (UUIDv7).
	RunID string `json:"run_id"`

	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Recording is the store's recordings after the flow.
	Recording mockstore.Recording `json:"recording"`

	// State is the store's final state.
	State any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
