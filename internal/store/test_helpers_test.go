package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/clausal/internal/reader"
	"github.com/roach88/clausal/internal/theory"
)

// createTestStore opens a fresh store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustTheory parses src into a theory.
func mustTheory(t *testing.T, src string) *theory.Theory {
	t.Helper()
	clauses, err := reader.ParseClauses(src)
	if err != nil {
		t.Fatalf("ParseClauses() failed: %v", err)
	}
	th, err := theory.New(clauses...)
	if err != nil {
		t.Fatalf("theory.New() failed: %v", err)
	}
	return th
}
