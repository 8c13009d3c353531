package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locustmcp/internal/protocol"
)

func writeScript(t *testing.T, root string, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("from locust import task\n"), 0o644))
	return path
}

func TestIsScriptName(t *testing.T) {
	assert.True(t, IsScriptName("locustfile.py"))
	assert.True(t, IsScriptName("my_locust_test.py"))
	assert.True(t, IsScriptName("Locustfile.PY"))
	assert.False(t, IsScriptName("loadtest.py"))
	assert.False(t, IsScriptName("locustfile.txt"))
	assert.False(t, IsScriptName("locustfile.py.bak"))
}

func TestFindAll_ShallowFirstThenName(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "a/b/other_locustfile.py")
	writeScript(t, root, "a/locustfile.py")
	writeScript(t, root, "zz_locust.py")

	found, err := FindAll(root)
	require.NoError(t, err)
	require.Len(t, found, 3)

	assert.Equal(t, "zz_locust.py", found[0].Name)
	assert.Equal(t, 0, found[0].Depth)
	assert.Equal(t, "locustfile.py", found[1].Name)
	assert.Equal(t, 1, found[1].Depth)
	assert.Equal(t, "other_locustfile.py", found[2].Name)
	assert.Equal(t, 2, found[2].Depth)
}

func TestFindAll_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "a/locustfile.py")
	writeScript(t, root, "a/b/other_locustfile.py")
	writeScript(t, root, "c/locust_smoke.py")

	first, err := FindAll(root)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := FindAll(root)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindAll_SkipsIgnoredAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "locustfile.py")
	writeScript(t, root, ".git/locustfile.py")
	writeScript(t, root, "node_modules/locustfile.py")
	writeScript(t, root, "__pycache__/locustfile.py")
	writeScript(t, root, ".hidden/locustfile.py")

	found, err := FindAll(root)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 0, found[0].Depth)
}

func TestFindAll_AllPathsUnderRoot(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "a/locustfile.py")
	writeScript(t, root, "a/b/locust_other.py")

	found, err := FindAll(root)
	require.NoError(t, err)
	for _, sf := range found {
		assert.True(t, filepath.IsAbs(sf.Path))
		assert.NotContains(t, sf.Path, "..")
	}
}

func TestResolve_PreferredRespected(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "locustfile.py")
	want := writeScript(t, root, "deep/nested/locust_special.py")

	sf, err := Resolve(root, "deep/nested/locust_special.py")
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(want), sf.Name)
	assert.Equal(t, 2, sf.Depth)
}

func TestResolve_FallbackWhenPreferredMissing(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "a/locustfile.py")
	writeScript(t, root, "a/b/other_locustfile.py")

	sf, err := Resolve(root, "does/not/exist_locust.py")
	require.NoError(t, err)
	assert.Equal(t, "locustfile.py", sf.Name)
}

func TestResolve_EscapingPreferredRejected(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "locustfile.py")

	_, err := Resolve(root, "../../../etc/locust_passwd.py")
	require.Error(t, err)
	assert.Equal(t, protocol.CodeInvalidInput, protocol.CodeOf(err))
}

func TestResolve_NoCandidateAnywhere(t *testing.T) {
	root := t.TempDir()

	_, err := Resolve(root, "")
	require.Error(t, err)
	assert.Equal(t, protocol.CodeNotFound, protocol.CodeOf(err))
}

func TestResolve_DefaultPicksShallowest(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, "a/locustfile.py")
	writeScript(t, root, "a/b/other_locustfile.py")

	sf, err := Resolve(root, "")
	require.NoError(t, err)
	assert.Equal(t, "locustfile.py", sf.Name)
	assert.Equal(t, 1, sf.Depth)
}
