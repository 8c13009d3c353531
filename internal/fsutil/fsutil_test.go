package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath_RelativeInsideRoot(t *testing.T) {
	root := t.TempDir()

	resolved, err := ResolvePath(root, "scripts/locustfile.py")
	require.NoError(t, err)

	canonical, err := CanonicalRoot(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonical, "scripts", "locustfile.py"), resolved)
}

func TestResolvePath_ParentTraversalRejected(t *testing.T) {
	root := t.TempDir()

	_, err := ResolvePath(root, "../outside.py")
	assert.Error(t, err)

	_, err = ResolvePath(root, "a/../../outside.py")
	assert.Error(t, err)
}

func TestResolvePath_AbsoluteInsideRootAccepted(t *testing.T) {
	root, err := CanonicalRoot(t.TempDir())
	require.NoError(t, err)
	target := filepath.Join(root, "locustfile.py")
	require.NoError(t, os.WriteFile(target, []byte("pass"), 0o644))

	resolved, err := ResolvePath(root, target)
	require.NoError(t, err)
	assert.Equal(t, "locustfile.py", filepath.Base(resolved))
}

func TestResolvePath_AbsoluteOutsideRootRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	_, err := ResolvePath(root, filepath.Join(outside, "locustfile.py"))
	assert.Error(t, err)
}

func TestResolvePath_SymlinkEscapeRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.py")
	require.NoError(t, os.WriteFile(secret, []byte("pass"), 0o644))
	require.NoError(t, os.Symlink(secret, filepath.Join(root, "link.py")))

	_, err := ResolvePath(root, "link.py")
	assert.Error(t, err)
}

func TestResolvePath_MissingTargetStillResolves(t *testing.T) {
	root := t.TempDir()

	resolved, err := ResolvePath(root, "generated/new.py")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestAtomicWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.py")

	err := AtomicWrite(path, []byte("from locust import task\n"), 0o644)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from locust import task\n", string(data))
}

func TestAtomicWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.py")

	require.NoError(t, AtomicWrite(path, []byte("x"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.py", entries[0].Name())
}

func TestReadFileMax_EnforcesLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.py")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	_, err := ReadFileMax(path, 50)
	assert.Error(t, err)

	data, err := ReadFileMax(path, 200)
	require.NoError(t, err)
	assert.Len(t, data, 100)
}
