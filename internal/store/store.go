package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store persists saved theory versions and the query history.
type Store struct {
	db *sql.DB
}

// connPragmas are set on the connection before the schema is applied.
//
// theory_clauses references both theories and clauses, so foreign keys must
// be enforced. A repl or batch run appends to queries while history reads
// it from another process: WAL lets those readers proceed, and busy_timeout
// makes a second writer wait instead of failing with SQLITE_BUSY. Each
// recorded query is one small insert, so NORMAL sync is enough under WAL.
var connPragmas = []struct{ name, value string }{
	{"foreign_keys", "ON"},
	{"journal_mode", "WAL"},
	{"busy_timeout", "5000"},
	{"synchronous", "NORMAL"},
}

// migration is one step of the schema past the base tables in schema.sql.
// Steps run in order, each in its own transaction, and bump user_version.
type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "history by theory", `CREATE INDEX IF NOT EXISTS idx_queries_theory_seq ON queries(theory, seq)`},
	{2, "history by outcome", `CREATE INDEX IF NOT EXISTS idx_queries_outcome_seq ON queries(outcome, seq)`},
	{3, "clause reuse across versions", `CREATE INDEX IF NOT EXISTS idx_theory_clauses_hash ON theory_clauses(clause_hash)`},
}

// currentSchemaVersion is the user_version of a fully migrated store.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Open opens the store at path, creating it if needed, and brings its
// schema up to date. Opening an existing store is safe.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and the pragmas above are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, p := range connPragmas {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", p.name, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return s.migrate(ctx)
}

// migrate applies the steps newer than the stored user_version.
func (s *Store) migrate(ctx context.Context) error {
	have, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= have {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return v, nil
}

// pragma reads the current value of a connection pragma.
func (s *Store) pragma(ctx context.Context, name string) (string, error) {
	var v string
	if err := s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&v); err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}
	return v, nil
}
