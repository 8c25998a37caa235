package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// VersionInfo describes one saved version of a theory.
type VersionInfo struct {
	Name        string    `json:"name"`
	Version     int64     `json:"version"`
	Hash        string    `json:"hash"`
	ClauseCount int       `json:"clause_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsNotFound reports whether err means the requested theory or version does
// not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// SaveTheory stores th as the next version of name and returns the version
// number. Clauses already in the store are not written again. Saving the
// same content as the latest version returns that version unchanged.
func (s *Store) SaveTheory(ctx context.Context, name string, th *theory.Theory) (int64, error) {
	clauses := th.Clauses()
	hashes := make([]string, len(clauses))
	bodies := make([][]byte, len(clauses))
	for i, c := range clauses {
		body, err := term.MarshalCanonical(c)
		if err != nil {
			return 0, fmt.Errorf("save theory %s: clause %d: %w", name, i, err)
		}
		h, err := term.ClauseHash(c)
		if err != nil {
			return 0, fmt.Errorf("save theory %s: clause %d: %w", name, i, err)
		}
		hashes[i], bodies[i] = h, body
	}
	theoryHash, err := term.TheoryHash(hashes)
	if err != nil {
		return 0, fmt.Errorf("save theory %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save theory %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	var latest int64
	var latestHash sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT version, hash FROM theories
		WHERE name = ?
		ORDER BY version DESC
		LIMIT 1
	`, name).Scan(&latest, &latestHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("save theory %s: latest version: %w", name, err)
	}
	if latestHash.Valid && latestHash.String == theoryHash {
		return latest, nil
	}
	version := latest + 1

	for i := range clauses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clauses (hash, body) VALUES (?, ?)
			ON CONFLICT(hash) DO NOTHING
		`, hashes[i], string(bodies[i])); err != nil {
			return 0, fmt.Errorf("save theory %s: write clause %d: %w", name, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO theories (name, version, hash, clause_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, name, version, theoryHash, len(clauses), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("save theory %s: write version: %w", name, err)
	}

	for i, h := range hashes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO theory_clauses (name, version, ord, clause_hash)
			VALUES (?, ?, ?, ?)
		`, name, version, i, h); err != nil {
			return 0, fmt.Errorf("save theory %s: write order %d: %w", name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save theory %s: commit: %w", name, err)
	}
	return version, nil
}

// LoadTheory rebuilds a saved version of name with its clauses in their
// original order. Returns an error satisfying IsNotFound if the version does
// not exist.
func (s *Store) LoadTheory(ctx context.Context, name string, version int64) (*theory.Theory, error) {
	var want int
	err := s.db.QueryRowContext(ctx, `
		SELECT clause_count FROM theories WHERE name = ? AND version = ?
	`, name, version).Scan(&want)
	if err != nil {
		return nil, fmt.Errorf("load theory %s@%d: %w", name, version, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.body
		FROM theory_clauses tc
		JOIN clauses c ON c.hash = tc.clause_hash
		WHERE tc.name = ? AND tc.version = ?
		ORDER BY tc.ord ASC
	`, name, version)
	if err != nil {
		return nil, fmt.Errorf("load theory %s@%d: %w", name, version, err)
	}
	defer rows.Close()

	clauses := make([]*term.Clause, 0, want)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("load theory %s@%d: scan: %w", name, version, err)
		}
		c, err := term.UnmarshalClause([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("load theory %s@%d: clause %d: %w", name, version, len(clauses), err)
		}
		clauses = append(clauses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load theory %s@%d: %w", name, version, err)
	}
	if len(clauses) != want {
		return nil, fmt.Errorf("load theory %s@%d: found %d clauses, expected %d", name, version, len(clauses), want)
	}

	th, err := theory.New(clauses...)
	if err != nil {
		return nil, fmt.Errorf("load theory %s@%d: %w", name, version, err)
	}
	return th, nil
}

// LoadLatest loads the most recent version of name and reports its number.
func (s *Store) LoadLatest(ctx context.Context, name string) (*theory.Theory, int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT version FROM theories
		WHERE name = ?
		ORDER BY version DESC
		LIMIT 1
	`, name).Scan(&version)
	if err != nil {
		return nil, 0, fmt.Errorf("load latest %s: %w", name, err)
	}
	th, err := s.LoadTheory(ctx, name, version)
	if err != nil {
		return nil, 0, err
	}
	return th, version, nil
}

// ListVersions returns the saved versions of name, oldest first.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, version, hash, clause_count, created_at
		FROM theories
		WHERE name = ?
		ORDER BY version ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list versions %s: %w", name, err)
	}
	defer rows.Close()

	out := []VersionInfo{}
	for rows.Next() {
		var v VersionInfo
		var created string
		if err := rows.Scan(&v.Name, &v.Version, &v.Hash, &v.ClauseCount, &created); err != nil {
			return nil, fmt.Errorf("list versions %s: scan: %w", name, err)
		}
		if v.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("list versions %s: created_at: %w", name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list versions %s: %w", name, err)
	}
	return out, nil
}

// TheoryNames returns the names of all saved theories in binary order.
func (s *Store) TheoryNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT name FROM theories ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("theory names: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("theory names: scan: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
