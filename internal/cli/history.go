package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/clausal/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	storeFlags
	Limit   int
	Outcome string
}

// HistoryResult lists a theory's versions and its most recent queries.
type HistoryResult struct {
	Theory   string              `json:"theory"`
	Versions []store.VersionInfo `json:"versions"`
	Queries  []store.QueryRecord `json:"queries"`
}

func (h HistoryResult) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "theory %s\n", h.Theory)
	if len(h.Versions) == 0 {
		fmt.Fprintln(tw, "  no saved versions")
	}
	for _, v := range h.Versions {
		fmt.Fprintf(tw, "  v%d\t%d clauses\t%s\t%s\n", v.Version, v.ClauseCount, shortHash(v.Hash), v.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(tw, "queries")
	if len(h.Queries) == 0 {
		fmt.Fprintln(tw, "  none")
	}
	for _, q := range h.Queries {
		fmt.Fprintf(tw, "  #%d\tv%d\t%s\t%s\t%d solutions\t%d steps\t%s\n",
			q.Seq, q.Version, q.Goal, q.Outcome, q.Solutions, q.Steps, q.Duration)
	}
	return tw.Flush()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved theory versions and recent queries",
		Long: `List the saved versions of a theory and the queries run against it,
oldest first.

Examples:
  clausal history --db clausal.db --theory family
  clausal history --limit 5 --format json
  clausal history --outcome error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show at most this many recent queries (0 = all)")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only queries with this outcome (yes|no|error|halt)")
	opts.storeFlags.register(cmd)

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	db, name := opts.storeFlags.resolve(opts.RootOptions)
	if db == "" {
		return reportError(f, NewExitError(ExitCommandError, "no database: use --db or set database in the config"))
	}
	st, err := store.Open(db)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	versions, err := st.ListVersions(ctx, name)
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to read database", err))
	}
	if opts.Limit < 0 {
		return reportError(f, NewExitError(ExitCommandError, "invalid --limit: must not be negative"))
	}
	queries, err := st.SearchQueries(ctx, store.QueryFilter{Theory: name, Outcome: opts.Outcome, Last: opts.Limit})
	if err != nil {
		return reportError(f, WrapExitError(ExitCommandError, "failed to read database", err))
	}

	return f.Success(HistoryResult{Theory: name, Versions: versions, Queries: queries})
}
