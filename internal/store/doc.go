// Package store provides SQLite-backed durable storage for scenario runs.
//
// Each harness run is archived as one row in runs plus one row per recorded
// log entry in entries:
//   - runs: id, scenario, verdict, session id, failure messages, final state
//   - entries: (run_id, log, seq) -> canonical JSON payload
//
// # Ordering
//
// Runs are numbered by created_seq, a logical counter assigned at write
// time, never by wall-clock time. Entries keep their position within their
// log. Every query orders by these columns, so reads are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
