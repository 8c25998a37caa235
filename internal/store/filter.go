package store

import (
	"fmt"
	"slices"
	"strings"
)

// QueryFilter selects history entries. Zero fields match everything.
type QueryFilter struct {
	Theory   string
	Outcome  string // yes, no, error or halt
	AfterSeq int64  // only entries with a greater seq
	Last     int    // only the most recent Last entries
}

var outcomes = []string{"yes", "no", "error", "halt"}

const queryColumns = "id, theory, version, seq, goal, outcome, solutions, steps, duration_ms, error"

// compile renders the filter as parameterized SQL. Values are always bound
// as parameters. Every statement ends in the same total order: seq, then id.
func (f QueryFilter) compile() (string, []any, error) {
	var (
		where  []string
		params []any
	)
	if f.Theory != "" {
		where = append(where, "theory = ?")
		params = append(params, f.Theory)
	}
	if f.Outcome != "" {
		if !slices.Contains(outcomes, f.Outcome) {
			return "", nil, fmt.Errorf("invalid outcome %q: must be one of %v", f.Outcome, outcomes)
		}
		where = append(where, "outcome = ?")
		params = append(params, f.Outcome)
	}
	if f.AfterSeq > 0 {
		where = append(where, "seq > ?")
		params = append(params, f.AfterSeq)
	}
	if f.Last < 0 {
		return "", nil, fmt.Errorf("invalid limit %d", f.Last)
	}

	sql := "SELECT " + queryColumns + " FROM queries"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Last == 0 {
		return sql + " ORDER BY seq ASC, id COLLATE BINARY ASC", params, nil
	}
	// Newest Last rows, returned oldest first.
	sql = "SELECT " + queryColumns + " FROM (" + sql +
		" ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?) ORDER BY seq ASC, id COLLATE BINARY ASC"
	return sql, append(params, f.Last), nil
}
