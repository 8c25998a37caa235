package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryFilter_Compile(t *testing.T) {
	tests := []struct {
		name       string
		filter     QueryFilter
		wantWhere  string
		wantParams []any
	}{
		{"empty", QueryFilter{}, "", nil},
		{"theory", QueryFilter{Theory: "family"}, " WHERE theory = ?", []any{"family"}},
		{
			"all fields",
			QueryFilter{Theory: "t", Outcome: "no", AfterSeq: 5},
			" WHERE theory = ? AND outcome = ? AND seq > ?",
			[]any{"t", "no", int64(5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := tt.filter.compile()
			require.NoError(t, err)
			assert.Equal(t, "SELECT "+queryColumns+" FROM queries"+tt.wantWhere+" ORDER BY seq ASC, id COLLATE BINARY ASC", sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestQueryFilter_CompileLast(t *testing.T) {
	sql, params, err := QueryFilter{Theory: "t", Last: 3}.compile()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, "LIMIT ?) ORDER BY seq ASC, id COLLATE BINARY ASC"), sql)
	assert.Equal(t, []any{"t", 3}, params)
}

func TestQueryFilter_ValuesAreParameters(t *testing.T) {
	sql, params, err := QueryFilter{Theory: "x'; DROP TABLE queries; --"}.compile()
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, []any{"x'; DROP TABLE queries; --"}, params)
}

func TestQueryFilter_Invalid(t *testing.T) {
	_, _, err := QueryFilter{Outcome: "maybe"}.compile()
	assert.ErrorContains(t, err, `invalid outcome "maybe"`)

	_, _, err = QueryFilter{Last: -1}.compile()
	assert.ErrorContains(t, err, "invalid limit")
}

func TestSearchQueries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	outcomes := []string{"yes", "no", "yes", "error", "yes"}
	for i, o := range outcomes {
		require.NoError(t, s.RecordQuery(ctx, QueryRecord{
			ID: string(rune('a' + i)), Theory: "t", Seq: int64(i + 1), Goal: "g", Outcome: o,
		}))
	}
	require.NoError(t, s.RecordQuery(ctx, QueryRecord{ID: "z", Theory: "other", Seq: 9, Goal: "g", Outcome: "yes"}))

	seqs := func(rs []QueryRecord) []int64 {
		var out []int64
		for _, r := range rs {
			out = append(out, r.Seq)
		}
		return out
	}

	got, err := s.SearchQueries(ctx, QueryFilter{Theory: "t", Outcome: "yes"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 5}, seqs(got))

	got, err = s.SearchQueries(ctx, QueryFilter{Theory: "t", Last: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, seqs(got), "most recent entries, oldest first")

	got, err = s.SearchQueries(ctx, QueryFilter{AfterSeq: 4})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 9}, seqs(got))

	_, err = s.SearchQueries(ctx, QueryFilter{Outcome: "maybe"})
	assert.Error(t, err)
}
