package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_CreatesDirectories(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Initialize(root))

	for _, dir := range RequiredDirectories() {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, "directory %s should exist", dir)
		assert.True(t, info.IsDir())
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Initialize(root))
	assert.NoError(t, Initialize(root))
}

func TestIsInitialized(t *testing.T) {
	root := t.TempDir()

	ok, err := IsInitialized(root)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Initialize(root))

	ok, err = IsInitialized(root)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsInitialized_FileInPlaceOfDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, GeneratedDir), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, RecordingsDir), 0o755))

	ok, err := IsInitialized(root)
	require.NoError(t, err)
	assert.False(t, ok)
}
