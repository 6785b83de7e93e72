// Package action defines the unit of intent dispatched to a store.
//
// An action is a plain key/value record with at least a "type" field.
// The package provides the validator every recorded action passes through,
// the matcher behind the Has* queries of an instrumented store, the wrapper
// used for vetoed actions, and a canonical JSON encoding used to snapshot
// recordings deterministically.
//
// # Matching
//
// Criteria are either a type name or a partial record:
//
//	action.Has([]any{"ADD_TODO", action.Action{"type": "TOGGLE", "id": 1}}, log)
//
// Every criterion must match at least one entry. Record criteria match
// partially: fields absent from the criterion are ignored.
package action
