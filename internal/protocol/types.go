// Package protocol defines the result and error types shared by the tool
// surface. Handlers marshal these as JSON text content, so every field carries
// an explicit json tag and the shapes stay stable across transports.
package protocol

import "time"

// Candidate is one discovered script file.
type Candidate struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// DiscoverResult reports the best script plus every candidate, shallow-first.
type DiscoverResult struct {
	Best string      `json:"best"`
	All  []Candidate `json:"all"`
}

// IntrospectResult carries the sorted task and tag names declared in a script.
type IntrospectResult struct {
	Path  string   `json:"path"`
	Tasks []string `json:"tasks"`
	Tags  []string `json:"tags"`
}

// ConvertResult is the generated script source plus the path it was written
// to, empty when persistence was not requested.
type ConvertResult struct {
	Code string `json:"code"`
	Path string `json:"path,omitempty"`
}

// JobInfo describes one tracked runner process.
type JobInfo struct {
	PID       int       `json:"pid"`
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Cmd       []string  `json:"cmd"`
	URL       string    `json:"url,omitempty"`
	Script    string    `json:"script"`
	StartedAt time.Time `json:"started_at"`
}

// LaunchResult reports an interactive launch.
type LaunchResult struct {
	Job JobInfo `json:"job"`
}

// HeadlessResult reports a completed headless run. Stdout and stderr are
// returned verbatim regardless of the exit status.
type HeadlessResult struct {
	OK     bool   `json:"ok"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// StopResult reports whether at least one termination signal was delivered.
type StopResult struct {
	Stopped bool `json:"stopped"`
}

// ListJobsResult carries every job still alive at call time.
type ListJobsResult struct {
	Jobs []JobInfo `json:"jobs"`
}

// ConvertAndLaunchResult combines the convert and launch steps of the
// composite workflow. Convert is populated even when the launch step fails;
// the written script is never rolled back.
type ConvertAndLaunchResult struct {
	Convert ConvertResult `json:"convert"`
	Launch  LaunchResult  `json:"launch"`
}
