package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/reader"
	"github.com/roach88/clausal/internal/stdlib"
	"github.com/roach88/clausal/internal/store"
	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// storeFlags selects a saved theory. Empty values fall back to the config.
type storeFlags struct {
	Database string
	Theory   string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Database, "db", "", "SQLite database (default from config)")
	cmd.Flags().StringVar(&f.Theory, "theory", "", "theory name in the database (default from config)")
}

func (f *storeFlags) resolve(opts *RootOptions) (db, name string) {
	db, name = f.Database, f.Theory
	if db == "" {
		db = opts.Config.Database
	}
	if name == "" {
		name = opts.Config.Theory
	}
	return db, name
}

// session is a solver over the consulted sources, optionally backed by a
// store that records the queries it runs.
type session struct {
	solver  *engine.Solver
	reader  *reader.Reader
	store   *store.Store // nil without a database
	theory  string
	version int64
}

// sessionOptions configures openSession.
type sessionOptions struct {
	files  []string
	output io.Writer
	engine []engine.Option
}

// openSession loads the latest saved theory (when a database is selected),
// consults the configured and given files after it and runs the directives.
func openSession(ctx context.Context, opts *RootOptions, sf storeFlags, so sessionOptions) (*session, error) {
	s := &session{reader: reader.New()}
	db, name := sf.resolve(opts)
	s.theory = name

	var clauses []*term.Clause
	clock := engine.NewClock()
	if db != "" {
		st, err := store.Open(db)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.store = st
		saved, version, err := st.LoadLatest(ctx, name)
		switch {
		case store.IsNotFound(err):
			slog.Debug("no saved theory", "theory", name)
		case err != nil:
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to load theory", err)
		default:
			clauses = saved.Clauses()
			s.version = version
		}
		seq, err := st.LastQuerySeq(ctx)
		if err != nil {
			s.Close()
			return nil, WrapExitError(ExitCommandError, "failed to read query history", err)
		}
		clock = engine.NewClockAt(seq)
	}

	files := append(append([]string{}, opts.Config.Consult...), so.files...)
	consulted, err := consultFiles(s.reader, files)
	if err != nil {
		s.Close()
		return nil, err
	}
	clauses = append(clauses, consulted...)
	kb, err := theory.New(clauses...)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "invalid theory", err)
	}

	output := so.output
	if output == nil {
		output = io.Discard
	}
	engineOpts := append(opts.Config.EngineOptions(),
		engine.WithLibrary(stdlib.Default()),
		engine.WithOutput(output),
		engine.WithClock(clock),
	)
	s.solver = engine.New(kb, append(engineOpts, so.engine...)...)
	if err := s.solver.Initialize(ctx); err != nil {
		s.Close()
		return nil, WrapExitError(ExitFailure, "initialization failed", err)
	}
	slog.Debug("session ready",
		"theory", name,
		"version", s.version,
		"clauses", kb.Len(),
		"files", len(files),
	)
	return s, nil
}

// Close releases the store.
func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// record appends a finished query to the history when a store is open.
func (s *session) record(ctx context.Context, out QueryOutput, seq int64, d time.Duration) {
	if s.store == nil {
		return
	}
	err := s.store.RecordQuery(ctx, store.QueryRecord{
		ID:        out.QueryID,
		Theory:    s.theory,
		Version:   s.version,
		Seq:       seq,
		Goal:      out.Goal,
		Outcome:   out.Outcome,
		Solutions: len(out.Solutions),
		Steps:     out.Steps,
		Duration:  d,
		Error:     out.Error,
	})
	if err != nil {
		slog.Error("failed to record query", "query_id", out.QueryID, "error", err)
	}
}

// consultFiles reads clauses from each file in order with one reader, so op/3
// directives carry over to later files.
func consultFiles(rd *reader.Reader, files []string) ([]*term.Clause, error) {
	var out []*term.Clause
	for _, path := range files {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("file not found: %s", path))
		}
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open source", err)
		}
		clauses, err := rd.ReadClauses(f)
		f.Close()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, path, err)
		}
		slog.Debug("consulted", "file", path, "clauses", len(clauses))
		out = append(out, clauses...)
	}
	return out, nil
}

// commandContext returns the command's context, or Background in tests that
// execute commands directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
