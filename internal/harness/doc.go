// Package harness runs declarative scenarios against instrumented mock
// stores.
//
// A scenario builds a fresh store, drives it through a flow of dispatches
// and asserts on what the middlewares recorded.
//
// # Scenario Format
//
// Scenarios are YAML files checked against an embedded CUE schema before
// they are decoded:
//
//	name: blocked_fetch
//	description: "Fetches are blocked while offline"
//	initial_state: { online: false, count: 0 }
//	reducer:
//	  INCREMENT: { op: increment, path: count }
//	  SET_ONLINE: { op: set, path: online, from: online }
//	block:
//	  - FETCH
//	middlewares: [thunk]
//	flow:
//	  - dispatch: { type: FETCH, url: /todos }
//	  - dispatch: { type: INCREMENT }
//	  - async: { outcome: resolve, value: { type: LOADED }, dispatch: true }
//	  - settle: true
//	  - clear: orphans
//	assertions:
//	  - type: has_blocked
//	    criteria: [FETCH]
//	  - type: count
//	    log: actions
//	    count: 3
//	  - type: final_state
//	    path: count
//	    expect: 1
//
// # Reducer Ops
//
//   - set: write the operand at path
//   - append: append the operand to the list at path
//   - increment, decrement: add or subtract the operand (default 1)
//   - replace: replace the value at path, or the whole state without a path
//   - reset: restore the initial state
//
// The operand is the action field named by from, or the literal value.
//
// # Assertion Types
//
//   - has_actions, has_blocked, has_orphans: every criterion matches an entry
//   - not_has_actions, not_has_blocked, not_has_orphans: the negation
//   - count: a log has exactly count entries
//   - log_equals: a log equals expect, entry by entry
//   - promises: sizes of the promise views
//   - final_state: the final state (or the value at path) contains expect
//
// # Deterministic Testing
//
// The store's session id is derived from the scenario name, trace sequence
// numbers come from a logical clock, and async steps settle on the store's
// own loop in FIFO order. Two runs of the same scenario produce identical
// snapshots, so RunWithGolden can compare them against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/blocked_fetch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
