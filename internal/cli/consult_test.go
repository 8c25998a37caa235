package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clausal/internal/store"
	"github.com/roach88/clausal/internal/testutil"
)

func TestConsult_SavesVersions(t *testing.T) {
	dir, file := familyDir(t)
	db := filepath.Join(dir, "clausal.db")

	out, err := execute(t, "", "consult", "--db", db, "--theory", "family", file)
	require.NoError(t, err)
	assert.Contains(t, out, "saved family version 1 (4 clauses")

	// Unchanged content keeps the version.
	out, err = execute(t, "", "consult", "--db", db, "--theory", "family", file)
	require.NoError(t, err)
	assert.Contains(t, out, "saved family version 1 ")

	extra := testutil.WriteFiles(t, dir, map[string]string{"more.pl": "parent(ann, joe).\n"})
	out, err = execute(t, "", "consult", "--db", db, "--theory", "family", file, filepath.Join(extra, "more.pl"))
	require.NoError(t, err)
	assert.Contains(t, out, "saved family version 2 (5 clauses")
}

func TestConsult_QueryFromDatabase(t *testing.T) {
	dir, file := familyDir(t)
	db := filepath.Join(dir, "clausal.db")

	_, err := execute(t, "", "consult", "--db", db, "--theory", "family", file)
	require.NoError(t, err)

	out, err := execute(t, "", "query", "--db", db, "--theory", "family", "parent(tom, X)")
	require.NoError(t, err)
	assert.Equal(t, "X = bob.\nX = liz.\n", out)

	// Files given to query are consulted after the saved theory.
	extra := testutil.WriteFiles(t, t.TempDir(), map[string]string{"kid.pl": "child(C, P) :- parent(P, C).\n"})
	out, err = execute(t, "", "query", "--db", db, "--theory", "family", "child(ann, P)", filepath.Join(extra, "kid.pl"))
	require.NoError(t, err)
	assert.Equal(t, "P = bob.\n", out)
}

func TestConsult_Warnings(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"p.pl": "p(X) :- q(X).\n"})

	out, err := execute(t, "", "consult", "--db", filepath.Join(dir, "c.db"), filepath.Join(dir, "p.pl"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: [W101] unknown procedure q/1 called from p/1\n")
	assert.Contains(t, out, "saved default version 1")
}

func TestConsult_JSON(t *testing.T) {
	dir, file := familyDir(t)

	out, err := execute(t, "", "--format", "json", "consult", "--db", filepath.Join(dir, "c.db"), file)
	require.NoError(t, err)

	var data ConsultResult
	resp := decodeResponse(t, out, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "default", data.Theory)
	assert.Equal(t, int64(1), data.Version)
	assert.Equal(t, 4, data.Clauses)
	assert.Len(t, data.Hash, 64)
	assert.Empty(t, data.Warnings)
}

func TestConsult_RequiresDatabase(t *testing.T) {
	_, file := familyDir(t)

	_, err := execute(t, "", "consult", file)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")
}

func TestConsult_RequiresFiles(t *testing.T) {
	_, err := execute(t, "", "consult", "--db", filepath.Join(t.TempDir(), "c.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistory_ListsVersionsAndQueries(t *testing.T) {
	dir, file := familyDir(t)
	db := filepath.Join(dir, "clausal.db")

	_, err := execute(t, "", "consult", "--db", db, "--theory", "family", file)
	require.NoError(t, err)
	_, err = execute(t, "", "query", "--db", db, "--theory", "family", "parent(tom, X)")
	require.NoError(t, err)
	_, err = execute(t, "", "query", "--db", db, "--theory", "family", "parent(ann, X)")
	require.Error(t, err)

	out, err := execute(t, "", "--format", "json", "history", "--db", db, "--theory", "family")
	require.NoError(t, err)

	var data HistoryResult
	decodeResponse(t, out, &data)
	require.Len(t, data.Versions, 1)
	assert.Equal(t, 4, data.Versions[0].ClauseCount)
	require.Len(t, data.Queries, 2)
	assert.Equal(t, "yes", data.Queries[0].Outcome)
	assert.Equal(t, 2, data.Queries[0].Solutions)
	assert.Equal(t, "no", data.Queries[1].Outcome)
	assert.Less(t, data.Queries[0].Seq, data.Queries[1].Seq, "the clock resumes across runs")
	assert.NotEqual(t, data.Queries[0].ID, data.Queries[1].ID)

	out, err = execute(t, "", "--format", "json", "history", "--db", db, "--theory", "family", "--outcome", "no")
	require.NoError(t, err)
	data = HistoryResult{}
	decodeResponse(t, out, &data)
	require.Len(t, data.Queries, 1)
	assert.Equal(t, "no", data.Queries[0].Outcome)

	out, err = execute(t, "", "history", "--db", db, "--theory", "family", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "theory family\n")
	assert.Contains(t, out, "v1")
	assert.NotContains(t, out, "2 solutions")
	assert.Contains(t, out, "0 solutions")
}

func TestHistory_Empty(t *testing.T) {
	out, err := execute(t, "", "history", "--db", filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "no saved versions")
	assert.Contains(t, out, "none")
}

func TestHistory_BadLimit(t *testing.T) {
	_, err := execute(t, "", "history", "--db", filepath.Join(t.TempDir(), "c.db"), "--limit", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistory_RecordsErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "c.db")

	_, err := execute(t, "", "query", "--db", db, "throw(oops)")
	require.Error(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	qs, err := st.ReadQueries(t.Context(), "default")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "error", qs[0].Outcome)
	assert.Contains(t, qs[0].Error, "oops")
}
