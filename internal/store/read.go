package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

type runRow struct {
	ID        string `db:"id"`
	Scenario  string `db:"scenario"`
	Pass      bool   `db:"pass"`
	Seq       int64  `db:"created_seq"`
	SessionID string `db:"session_id"`
	Errors    string `db:"errors"`
	State     string `db:"state"`
}

type entryRow struct {
	Log     string `db:"log"`
	Seq     int64  `db:"seq"`
	Payload string `db:"payload"`
}

var runColumns = []any{colID, colScenario, colPass, colCreatedSeq, colSessionID, colErrors, colState}

// ListRuns returns archived runs without their entries, oldest first.
// A non-empty scenario restricts the list to that scenario.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, scenario string) ([]RunRecord, error) {
	ds := goqu.Dialect(dialect).
		From(tableRuns).
		Select(runColumns...).
		Order(goqu.I(colCreatedSeq).Asc())
	if scenario != "" {
		ds = ds.Where(goqu.Ex{colScenario: scenario})
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("list runs: build query: %w", err)
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		run, err := row.record()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ReadRun returns one run with its entries, ordered by log then position.
// Returns an error wrapping ErrRunNotFound if the id is unknown.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	builder := goqu.Dialect(dialect)

	query, args, err := builder.From(tableRuns).
		Select(runColumns...).
		Where(goqu.Ex{colID: id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: build query: %w", err)
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if len(rows) == 0 {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}

	run, err := rows[0].record()
	if err != nil {
		return RunRecord{}, err
	}

	query, args, err = builder.From(tableEntries).
		Select(colLog, colSeq, colPayload).
		Where(goqu.Ex{colRunID: id}).
		Order(goqu.I(colLog).Asc(), goqu.I(colSeq).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run: build entries query: %w", err)
	}

	var entries []entryRow
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: entries: %w", id, err)
	}

	run.Entries = make([]Entry, 0, len(entries))
	for _, e := range entries {
		payload, err := unmarshalPayload(e.Payload)
		if err != nil {
			return RunRecord{}, fmt.Errorf("read run %s: %s[%d]: %w", id, e.Log, e.Seq, err)
		}
		run.Entries = append(run.Entries, Entry{Log: e.Log, Seq: e.Seq, Payload: payload})
	}
	return run, nil
}

// Log returns the payloads of one log in position order.
func (r RunRecord) Log(name string) []any {
	out := []any{}
	for _, e := range r.Entries {
		if e.Log == name {
			out = append(out, e.Payload)
		}
	}
	return out
}

func (row runRow) record() (RunRecord, error) {
	errs, err := unmarshalErrors(row.Errors)
	if err != nil {
		return RunRecord{}, fmt.Errorf("run %s: %w", row.ID, err)
	}
	state, err := unmarshalPayload(row.State)
	if err != nil {
		return RunRecord{}, fmt.Errorf("run %s: state: %w", row.ID, err)
	}
	return RunRecord{
		ID:        row.ID,
		Scenario:  row.Scenario,
		Pass:      row.Pass,
		Seq:       row.Seq,
		SessionID: row.SessionID,
		Errors:    errs,
		State:     state,
	}, nil
}
