// Package store keeps a SQLite history of harness runs.
//
// Each run records its outcome, the numbered steps it reached, and the
// artifacts it produced (screenshots and videos), so failures can be
// compared across runs without keeping every screenshot directory.
//
// # Tables
//
//   - runs: one row per run, keyed by a UUIDv7 run ID
//   - steps: step banners in order, keyed by (run_id, seq)
//   - artifacts: files produced, keyed by (run_id, seq)
//
// Steps and artifacts are ordered by seq; runs by start time, newest first.
//
// # Connection Settings
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
