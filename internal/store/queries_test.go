package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordQuery_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	records := []QueryRecord{
		{ID: "q-b", Theory: "t", Version: 1, Seq: 2, Goal: "p(X)", Outcome: "no", Solutions: 2, Steps: 9, Duration: 3 * time.Millisecond},
		{ID: "q-a", Theory: "t", Version: 1, Seq: 1, Goal: "q", Outcome: "error", Steps: 1, Error: "boom"},
		{ID: "q-c", Theory: "other", Version: 1, Seq: 3, Goal: "r", Outcome: "yes", Solutions: 1},
	}
	for _, r := range records {
		require.NoError(t, s.RecordQuery(ctx, r))
	}

	got, err := s.ReadQueries(ctx, "t")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[1], got[0])
	assert.Equal(t, records[0], got[1])
}

func TestRecordQuery_DuplicateIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := QueryRecord{ID: "q", Theory: "t", Seq: 1, Goal: "true", Outcome: "yes", Solutions: 1}
	require.NoError(t, s.RecordQuery(ctx, r))
	r.Outcome = "no"
	require.NoError(t, s.RecordQuery(ctx, r))

	got, err := s.ReadQueries(ctx, "t")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "yes", got[0].Outcome)
}

func TestReadQueries_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadQueries(context.Background(), "t")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLastQuerySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastQuerySeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.RecordQuery(ctx, QueryRecord{ID: "a", Theory: "t", Seq: 7, Goal: "true", Outcome: "yes"}))
	require.NoError(t, s.RecordQuery(ctx, QueryRecord{ID: "b", Theory: "u", Seq: 4, Goal: "true", Outcome: "yes"}))

	seq, err = s.LastQuerySeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
