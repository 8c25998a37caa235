package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	dir := WriteFiles(t, t.TempDir(), map[string]string{
		"a.pl":       "a.",
		"sub/b.yaml": "name: b",
	})

	data, err := os.ReadFile(filepath.Join(dir, "sub", "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "name: b", string(data))
}
