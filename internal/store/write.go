package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/roach88/mockstore/internal/mockstore"
)

const (
	tableRuns    = "runs"
	tableEntries = "entries"

	colID         = "id"
	colScenario   = "scenario"
	colPass       = "pass"
	colCreatedSeq = "created_seq"
	colSessionID  = "session_id"
	colErrors     = "errors"
	colState      = "state"
	colRunID      = "run_id"
	colLog        = "log"
	colSeq        = "seq"
	colPayload    = "payload"

	// entriesPerInsert keeps each entries INSERT (4 parameters per row)
	// below SQLite's bound parameter limit.
	entriesPerInsert = 200
)

// RunRecord is one archived scenario run.
type RunRecord struct {
	ID        string   `json:"id"`
	Scenario  string   `json:"scenario"`
	Pass      bool     `json:"pass"`
	Seq       int64    `json:"seq"` // assigned by WriteRun
	SessionID string   `json:"session_id"`
	Errors    []string `json:"errors"`
	State     any      `json:"state"`
	Entries   []Entry  `json:"entries,omitempty"`
}

// Entry is one recorded value at position Seq (from 0) of the named log.
type Entry struct {
	Log     string `json:"log"`
	Seq     int64  `json:"seq"`
	Payload any    `json:"payload"`
}

// NewRunRecord flattens a store recording into an archivable run.
// Entries are ordered by log (mockstore.LogNames order), then position.
func NewRunRecord(id, scenario string, pass bool, errs []string, rec mockstore.Recording, state any) RunRecord {
	logs := rec.Logs()

	var entries []Entry
	for _, name := range mockstore.LogNames {
		for i, v := range logs[name] {
			entries = append(entries, Entry{Log: name, Seq: int64(i), Payload: v})
		}
	}

	return RunRecord{
		ID:        id,
		Scenario:  scenario,
		Pass:      pass,
		SessionID: rec.SessionID,
		Errors:    errs,
		State:     state,
		Entries:   entries,
	}
}

// WriteRun archives a run and its entries in one transaction.
// Returns the run's created_seq and whether a new record was inserted.
//
// Writing a run id that already exists is a no-op: the existing seq is
// returned with inserted=false.
func (s *Store) WriteRun(ctx context.Context, run RunRecord) (seq int64, inserted bool, err error) {
	if run.ID == "" {
		return 0, false, fmt.Errorf("write run: id is required")
	}

	errsJSON, err := marshalErrors(run.Errors)
	if err != nil {
		return 0, false, fmt.Errorf("write run: %w", err)
	}
	stateJSON, err := marshalPayload(run.State)
	if err != nil {
		return 0, false, fmt.Errorf("write run: state: %w", err)
	}

	entryRows := make([]any, 0, len(run.Entries))
	for _, e := range run.Entries {
		payload, err := marshalPayload(e.Payload)
		if err != nil {
			return 0, false, fmt.Errorf("write run: %s[%d]: %w", e.Log, e.Seq, err)
		}
		entryRows = append(entryRows, goqu.Record{
			colRunID:   run.ID,
			colLog:     e.Log,
			colSeq:     e.Seq,
			colPayload: payload,
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	builder := goqu.Dialect(dialect)

	existingQuery, args, err := builder.From(tableRuns).
		Select(colCreatedSeq).
		Where(goqu.Ex{colID: run.ID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("write run: build lookup: %w", err)
	}
	var existing []int64
	if err := tx.SelectContext(ctx, &existing, existingQuery, args...); err != nil {
		return 0, false, fmt.Errorf("write run: lookup: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}

	maxQuery, args, err := builder.From(tableRuns).
		Select(goqu.COALESCE(goqu.MAX(colCreatedSeq), 0)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("write run: build seq query: %w", err)
	}
	var maxSeq int64
	if err := tx.GetContext(ctx, &maxSeq, maxQuery, args...); err != nil {
		return 0, false, fmt.Errorf("write run: next seq: %w", err)
	}
	seq = maxSeq + 1

	insertRun, args, err := builder.Insert(tableRuns).
		Rows(goqu.Record{
			colID:         run.ID,
			colScenario:   run.Scenario,
			colPass:       run.Pass,
			colCreatedSeq: seq,
			colSessionID:  run.SessionID,
			colErrors:     errsJSON,
			colState:      stateJSON,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("write run: build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertRun, args...); err != nil {
		return 0, false, fmt.Errorf("write run: %w", err)
	}

	for start := 0; start < len(entryRows); start += entriesPerInsert {
		end := min(start+entriesPerInsert, len(entryRows))
		insertEntries, args, err := builder.Insert(tableEntries).
			Rows(entryRows[start:end]...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return 0, false, fmt.Errorf("write run: build entries insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertEntries, args...); err != nil {
			return 0, false, fmt.Errorf("write run: entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, true, nil
}
