package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// GeneratedDir is where convert_and_launch persists scripts when the caller
// gives no destination.
const GeneratedDir = "generated"

// RecordingsDir is the conventional drop spot for HAR recordings.
const RecordingsDir = "recordings"

// LogsDir holds the job event log.
const LogsDir = "logs"

// JobLogFile is the NDJSON job event log name inside LogsDir.
const JobLogFile = "jobs.ndjson"

// RequiredDirectories lists the directories a locustmcp workspace carries.
func RequiredDirectories() []string {
	return []string{GeneratedDir, RecordingsDir, LogsDir}
}

// Initialize creates the workspace directories. Idempotent.
func Initialize(root string) error {
	for _, dir := range RequiredDirectories() {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}
	return nil
}

// IsInitialized reports whether every required directory exists.
func IsInitialized(root string) (bool, error) {
	for _, dir := range RequiredDirectories() {
		path := filepath.Join(root, dir)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to check directory %s: %w", path, err)
		}
		if !info.IsDir() {
			return false, nil
		}
	}
	return true, nil
}
