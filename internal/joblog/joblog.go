// Package joblog appends job lifecycle records to an NDJSON file so that a
// workspace keeps a durable trace of what was converted, launched, and
// stopped across server restarts.
package joblog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxEntryBytes caps a single log line (256 KiB). Headless output is
// truncated by the caller well below this; the cap guards against bugs.
const maxEntryBytes = 256 * 1024

// Kind labels a lifecycle record.
type Kind string

const (
	KindConverted   Kind = "converted"
	KindLaunched    Kind = "launched"
	KindHeadlessRun Kind = "headless_run"
	KindStopped     Kind = "stopped"
)

// Entry is one line of the job event log.
type Entry struct {
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"kind"`
	JobID    string    `json:"job_id,omitempty"`
	PID      int       `json:"pid,omitempty"`
	Mode     string    `json:"mode,omitempty"`
	Script   string    `json:"script,omitempty"`
	URL      string    `json:"url,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
	OK       *bool     `json:"ok,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Log is an append-only NDJSON writer. Safe for concurrent use.
type Log struct {
	file   *os.File
	writer *bufio.Writer
	logger *slog.Logger
	mu     sync.Mutex
}

// Open opens (or creates) the log file at path, creating parent directories
// as needed. Records are always appended.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open job log: %w", err)
	}

	return &Log{
		file:   file,
		writer: bufio.NewWriter(file),
		logger: logger,
	}, nil
}

// Append writes one entry as a single JSON line and flushes it. A zero Time
// is stamped with the current UTC time.
func (l *Log) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal job log entry: %w", err)
	}
	if len(data) > maxEntryBytes {
		l.logger.Error("job log entry exceeds size limit",
			"size", len(data),
			"limit", maxEntryBytes)
		return fmt.Errorf("job log entry size %d exceeds limit %d", len(data), maxEntryBytes)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write job log entry: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write job log entry: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush job log: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return fmt.Errorf("failed to flush job log: %w", err)
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadAll parses every entry in a log file. Blank lines are skipped;
// a malformed line fails the read with its line number.
func ReadAll(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxEntryBytes), maxEntryBytes)

	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to parse job log line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read job log: %w", err)
	}
	return entries, nil
}
