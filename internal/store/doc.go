// Package store persists theories and the query history in SQLite.
//
// Clauses are stored content-addressed: each clause is encoded as canonical
// JSON (term.MarshalCanonical) and keyed by term.ClauseHash, so saving a new
// version of a theory only writes the clauses that changed. A theory version
// is an ordered list of clause hashes.
//
// Ordering never depends on wall time. Theory versions are numbered per name
// and the query log is ordered by the engine's sequence numbers:
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// # Schema
//
// schema.sql creates the base tables. Indexes for the history and clause
// lookups are numbered migrations tracked in PRAGMA user_version; Open
// applies the pending ones, each in its own transaction.
package store
