package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Bytes_KnownDigest(t *testing.T) {
	// sha256 of the empty input is a fixed constant.
	assert.Equal(t,
		"sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Bytes(nil))
}

func TestSHA256File_MatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locustfile.py")
	content := []byte("from locust import task\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fromFile, err := SHA256File(path)
	require.NoError(t, err)
	assert.Equal(t, SHA256Bytes(content), fromFile)
}

func TestSHA256File_MissingFile(t *testing.T) {
	_, err := SHA256File(filepath.Join(t.TempDir(), "absent.py"))
	require.Error(t, err)
}
