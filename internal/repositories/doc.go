// Package repositories implements SQLite persistence for play history.
//
// [PlayHistoryRepository] handles CRUD operations with atomic sequence
// generation for human-readable ordering. Sequence numbers provide stable
// ordering (e.g., play #42) independent of UUIDs and creation timestamps;
// the [NextSequence] function atomically increments per-table sequence
// counters in dedicated sequence tables.
package repositories
