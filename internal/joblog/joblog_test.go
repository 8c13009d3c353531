package joblog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLog_AppendAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jobs.ndjson")

	log, err := Open(path, discardLogger())
	require.NoError(t, err)

	ok := true
	entries := []Entry{
		{Kind: KindConverted, Script: "generated/locustfile.py", Checksum: "sha256:abc"},
		{Kind: KindLaunched, JobID: "job-1", PID: 4242, Mode: "interactive", URL: "http://localhost:8089"},
		{Kind: KindHeadlessRun, Script: "locustfile.py", OK: &ok},
		{Kind: KindStopped, PID: 4242},
	}
	for _, e := range entries {
		require.NoError(t, log.Append(e))
	}
	require.NoError(t, log.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, KindConverted, got[0].Kind)
	assert.Equal(t, "sha256:abc", got[0].Checksum)
	assert.Equal(t, 4242, got[1].PID)
	assert.Equal(t, "http://localhost:8089", got[1].URL)
	require.NotNil(t, got[2].OK)
	assert.True(t, *got[2].OK)
	assert.Equal(t, KindStopped, got[3].Kind)
}

func TestLog_StampsZeroTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.ndjson")

	log, err := Open(path, discardLogger())
	require.NoError(t, err)

	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, log.Append(Entry{Kind: KindLaunched}))
	require.NoError(t, log.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Time.After(before))
}

func TestLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.ndjson")

	first, err := Open(path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, first.Append(Entry{Kind: KindLaunched, PID: 1}))
	require.NoError(t, first.Close())

	second, err := Open(path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, second.Append(Entry{Kind: KindStopped, PID: 1}))
	require.NoError(t, second.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindLaunched, got[0].Kind)
	assert.Equal(t, KindStopped, got[1].Kind)
}

func TestLog_RejectsOversizeEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.ndjson")

	log, err := Open(path, discardLogger())
	require.NoError(t, err)
	defer log.Close()

	err = log.Append(Entry{Kind: KindHeadlessRun, Detail: strings.Repeat("x", maxEntryBytes)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.ndjson")
	content := `{"time":"2026-01-02T03:04:05Z","kind":"launched","pid":7}` + "\n\n" +
		`{"time":"2026-01-02T03:05:05Z","kind":"stopped","pid":7}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].PID)
}

func TestReadAll_MalformedLineNamesLineNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.ndjson")
	content := `{"kind":"launched"}` + "\n" + `{not json}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadAll(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
