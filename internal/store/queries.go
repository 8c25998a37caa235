package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QueryRecord is one entry in the query history.
type QueryRecord struct {
	ID        string        `json:"id"` // UUIDv7 query ID from the engine
	Theory    string        `json:"theory"`
	Version   int64         `json:"version"`
	Seq       int64         `json:"seq"` // engine clock; orders the history
	Goal      string        `json:"goal"`
	Outcome   string        `json:"outcome"`   // kind of the last solution: yes, no, error, halt
	Solutions int           `json:"solutions"` // number of yes answers
	Steps     int64         `json:"steps"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// RecordQuery appends a query to the history.
// Uses ON CONFLICT(id) DO NOTHING so recording the same query twice is a no-op.
func (s *Store) RecordQuery(ctx context.Context, q QueryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries
		(id, theory, version, seq, goal, outcome, solutions, steps, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		q.ID,
		q.Theory,
		q.Version,
		q.Seq,
		q.Goal,
		q.Outcome,
		q.Solutions,
		q.Steps,
		q.Duration.Milliseconds(),
		q.Error,
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// ReadQueries returns the history for a theory, oldest first.
// Returns an empty slice (not nil) if there is none.
func (s *Store) ReadQueries(ctx context.Context, theoryName string) ([]QueryRecord, error) {
	return s.SearchQueries(ctx, QueryFilter{Theory: theoryName})
}

// SearchQueries returns the history entries matching f, oldest first.
func (s *Store) SearchQueries(ctx context.Context, f QueryFilter) ([]QueryRecord, error) {
	query, params, err := f.compile()
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	defer rows.Close()

	out := []QueryRecord{}
	for rows.Next() {
		var q QueryRecord
		var ms int64
		if err := rows.Scan(&q.ID, &q.Theory, &q.Version, &q.Seq, &q.Goal,
			&q.Outcome, &q.Solutions, &q.Steps, &ms, &q.Error); err != nil {
			return nil, fmt.Errorf("read queries: scan: %w", err)
		}
		q.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return out, nil
}

// LastQuerySeq returns the highest recorded sequence number, or 0 for an
// empty history. The engine clock resumes from it.
func (s *Store) LastQuerySeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM queries").Scan(&seq); err != nil {
		return 0, fmt.Errorf("last query seq: %w", err)
	}
	return seq.Int64, nil
}
