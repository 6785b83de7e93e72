package mockstore

import (
	"github.com/roach88/mockstore/internal/action"
)

// Log names used by Recording.Logs and the archive.
const (
	LogActions  = "actions"
	LogBlocked  = "blocked"
	LogOrphans  = "orphans"
	LogResolved = "resolved"
	LogRejected = "rejected"
)

// LogNames lists every recorded log in a fixed order.
var LogNames = []string{LogActions, LogBlocked, LogOrphans, LogResolved, LogRejected}

// Recording is a point-in-time copy of everything a store has recorded.
// Rejection reasons are kept as their messages.
type Recording struct {
	SessionID string   `json:"session_id" yaml:"session_id"`
	Actions   []any    `json:"actions" yaml:"actions"`
	Blocked   []any    `json:"blocked" yaml:"blocked"`
	Orphans   []any    `json:"orphans" yaml:"orphans"`
	Promises  int      `json:"promises" yaml:"promises"`
	Pending   int      `json:"pending" yaml:"pending"`
	Resolved  []any    `json:"resolved" yaml:"resolved"`
	Rejected  []string `json:"rejected" yaml:"rejected"`
}

// Recording snapshots every log.
func (s *Store) Recording() Recording {
	rejected := s.tracker.Rejected()
	reasons := make([]string, len(rejected))
	for i, err := range rejected {
		reasons[i] = err.Error()
	}

	return Recording{
		SessionID: s.sessionID,
		Actions:   s.logger.Actions(),
		Blocked:   s.blocker.Blocked(),
		Orphans:   s.orphans.Orphans(),
		Promises:  len(s.tracker.Promises()),
		Pending:   len(s.tracker.Pending()),
		Resolved:  s.tracker.Resolved(),
		Rejected:  reasons,
	}
}

// Logs returns the recording's logs keyed by name (see LogNames).
func (r Recording) Logs() map[string][]any {
	rejected := make([]any, len(r.Rejected))
	for i, msg := range r.Rejected {
		rejected[i] = msg
	}
	return map[string][]any{
		LogActions:  r.Actions,
		LogBlocked:  r.Blocked,
		LogOrphans:  r.Orphans,
		LogResolved: r.Resolved,
		LogRejected: rejected,
	}
}

// Map returns the recording as nested maps and lists, keyed like its JSON
// form.
func (r Recording) Map() map[string]any {
	doc := map[string]any{
		"session_id": r.SessionID,
		"promises":   r.Promises,
		"pending":    r.Pending,
	}
	for name, entries := range r.Logs() {
		doc[name] = entries
	}
	return doc
}

// Canonical encodes the recording as canonical JSON: sorted keys, NFC
// strings, no insignificant whitespace. Identical recordings always encode
// to identical bytes.
func (r Recording) Canonical() ([]byte, error) {
	return action.MarshalCanonical(r.Map())
}
