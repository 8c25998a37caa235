package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/analysis"
	"github.com/roach88/clausal/internal/reader"
	"github.com/roach88/clausal/internal/stdlib"
	"github.com/roach88/clausal/internal/store"
	"github.com/roach88/clausal/internal/theory"
)

// ConsultOptions holds flags for the consult command.
type ConsultOptions struct {
	*RootOptions
	storeFlags
}

// ConsultResult describes a saved theory version.
type ConsultResult struct {
	Theory  string `json:"theory"`
	Version int64  `json:"version"`
	Clauses int    `json:"clauses"`
	Hash    string `json:"hash"`

	Warnings []analysis.Warning `json:"warnings,omitempty"`
}

func (r ConsultResult) writeText(w io.Writer) error {
	for _, wn := range r.Warnings {
		if _, err := fmt.Fprintf(w, "%s: %s\n", wn.Level, wn); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "saved %s version %d (%d clauses, %s)\n", r.Theory, r.Version, r.Clauses, shortHash(r.Hash))
	return err
}

// NewConsultCommand creates the consult command.
func NewConsultCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsultOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consult <files...>",
		Short: "Parse source files and save them as a new theory version",
		Long: `Parse the files in order and save their clauses as the next version of
the theory. Saving content identical to the latest version keeps that
version.

Examples:
  clausal consult --db clausal.db --theory family family.pl rules.pl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsult(opts, args, cmd)
		},
	}

	opts.storeFlags.register(cmd)

	return cmd
}

func runConsult(opts *ConsultOptions, files []string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	db, name := opts.storeFlags.resolve(opts.RootOptions)
	if db == "" {
		return reportError(f, NewExitError(ExitCommandError, "no database: use --db or set database in the config"))
	}

	clauses, err := consultFiles(reader.New(), files)
	if err != nil {
		return reportError(f, err)
	}
	th, err := theory.New(clauses...)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "invalid theory", err))
	}
	hash, err := th.ContentHash()
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "invalid theory", err))
	}
	warnings := analysis.Analyze(th, stdlib.Default())
	for _, wn := range warnings {
		slog.Debug("analysis", "code", wn.Code, "predicate", wn.Predicate)
	}

	st, err := store.Open(db)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	version, err := st.SaveTheory(ctx, name, th)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to save theory to database", err))
	}
	slog.Info("theory saved", "theory", name, "version", version, "clauses", th.Len())

	return f.Success(ConsultResult{Theory: name, Version: version, Clauses: th.Len(), Hash: hash, Warnings: warnings})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
