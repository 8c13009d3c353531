// Package toolserver composes the orchestration components into the MCP tool
// surface: discovery, introspection, conversion, launch, stop, list, and the
// composite convert-then-launch workflow.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"locustmcp/internal/checksum"
	"locustmcp/internal/discovery"
	"locustmcp/internal/generator"
	"locustmcp/internal/introspect"
	"locustmcp/internal/joblog"
	"locustmcp/internal/launcher"
	"locustmcp/internal/protocol"
	"locustmcp/internal/registry"
	"locustmcp/internal/workspace"
)

// Service implements every operation of the tool surface. Operations execute
// synchronously with respect to the caller; only the spawned runner processes
// run concurrently.
type Service struct {
	Root     string
	Bridge   *generator.Bridge
	Launcher *launcher.Launcher
	Registry *registry.Registry
	Events   *joblog.Log // optional; nil disables the job event log
	Logger   *slog.Logger
}

// record appends a lifecycle entry to the job event log. Log failures are
// reported but never fail the operation that triggered them.
func (s *Service) record(e joblog.Entry) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Append(e); err != nil {
		s.Logger.Warn("failed to record job event", "kind", e.Kind, "error", err)
	}
}

// Discover returns the best script plus every candidate under the workspace
// root, shallow-first.
func (s *Service) Discover(preferred string) (protocol.DiscoverResult, error) {
	best, err := discovery.Resolve(s.Root, preferred)
	if err != nil {
		return protocol.DiscoverResult{}, err
	}

	all, err := discovery.FindAll(s.Root)
	if err != nil {
		return protocol.DiscoverResult{}, err
	}

	out := protocol.DiscoverResult{Best: best.Path, All: make([]protocol.Candidate, 0, len(all))}
	for _, sf := range all {
		out.All = append(out.All, protocol.Candidate{Path: sf.Path, Name: sf.Name, Depth: sf.Depth})
	}
	return out, nil
}

// Introspect parses a script for its declared task names and tag labels.
func (s *Service) Introspect(path string) (protocol.IntrospectResult, error) {
	parsed, err := introspect.ParseFile(s.Root, path)
	if err != nil {
		return protocol.IntrospectResult{}, err
	}
	return protocol.IntrospectResult{Path: parsed.Path, Tasks: parsed.Tasks, Tags: parsed.Tags}, nil
}

// Convert runs the generator against a recording and optionally persists the
// generated script when dest is non-empty.
func (s *Service) Convert(ctx context.Context, input string, opts generator.Options, dest string) (protocol.ConvertResult, error) {
	code, err := s.Bridge.Convert(ctx, input, opts)
	if err != nil {
		return protocol.ConvertResult{}, err
	}

	result := protocol.ConvertResult{Code: code}
	if dest != "" {
		path, err := s.Bridge.Persist(code, dest)
		if err != nil {
			return protocol.ConvertResult{}, err
		}
		result.Path = path
		s.record(joblog.Entry{
			Kind:     joblog.KindConverted,
			Script:   path,
			Checksum: checksum.SHA256Bytes([]byte(code)),
		})
	}
	return result, nil
}

// LaunchInteractive starts a non-blocking runner with the web interface up.
func (s *Service) LaunchInteractive(ctx context.Context, script, host string, port int) (protocol.LaunchResult, error) {
	job, err := s.Launcher.LaunchInteractive(ctx, script, host, port)
	if err != nil {
		return protocol.LaunchResult{}, err
	}
	s.record(joblog.Entry{
		Kind:   joblog.KindLaunched,
		JobID:  job.ID,
		PID:    job.PID,
		Mode:   string(job.Mode),
		Script: job.Script,
		URL:    job.URL,
	})
	return protocol.LaunchResult{Job: jobInfo(job)}, nil
}

// LaunchHeadless runs the runner to completion and reports its outcome.
func (s *Service) LaunchHeadless(ctx context.Context, script string, params launcher.HeadlessParams) (protocol.HeadlessResult, error) {
	res, err := s.Launcher.RunHeadless(ctx, script, params)
	if err != nil {
		return protocol.HeadlessResult{}, err
	}
	ok := res.OK
	s.record(joblog.Entry{Kind: joblog.KindHeadlessRun, Script: script, OK: &ok})
	return protocol.HeadlessResult{OK: res.OK, Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

// StopJob terminates a tracked job by PID.
func (s *Service) StopJob(pid int) (protocol.StopResult, error) {
	stopped, err := s.Registry.Stop(pid)
	if err != nil {
		return protocol.StopResult{Stopped: stopped}, err
	}
	s.record(joblog.Entry{Kind: joblog.KindStopped, PID: pid})
	return protocol.StopResult{Stopped: stopped}, nil
}

// ListJobs reports every job still alive, pruning dead entries.
func (s *Service) ListJobs() protocol.ListJobsResult {
	jobs := s.Registry.List()
	out := protocol.ListJobsResult{Jobs: make([]protocol.JobInfo, 0, len(jobs))}
	for _, job := range jobs {
		out.Jobs = append(out.Jobs, jobInfo(job))
	}
	return out
}

// ConvertAndLaunch chains convert → persist → launch_interactive. It is not
// transactional: when the launch step fails the persisted script stays on
// disk and the reported error names the launch step only.
func (s *Service) ConvertAndLaunch(ctx context.Context, input, dest, host string, port int, opts generator.Options) (protocol.ConvertAndLaunchResult, error) {
	if dest == "" {
		dest = filepath.Join(workspace.GeneratedDir,
			fmt.Sprintf("locustfile_%s.py", time.Now().UTC().Format("20060102T150405")))
	}

	converted, err := s.Convert(ctx, input, opts, dest)
	if err != nil {
		return protocol.ConvertAndLaunchResult{}, err
	}

	result := protocol.ConvertAndLaunchResult{Convert: converted}
	launch, err := s.LaunchInteractive(ctx, converted.Path, host, port)
	if err != nil {
		return result, fmt.Errorf("launch step failed (generated script kept at %s): %w", converted.Path, err)
	}
	result.Launch = launch
	return result, nil
}

// Shutdown stops every tracked job and closes the event log. Called when the
// server exits.
func (s *Service) Shutdown() {
	s.Registry.StopAll()
	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			s.Logger.Warn("failed to close job event log", "error", err)
		}
	}
}

func jobInfo(job registry.Job) protocol.JobInfo {
	return protocol.JobInfo{
		PID:       job.PID,
		ID:        job.ID,
		Mode:      string(job.Mode),
		Cmd:       job.Cmd,
		URL:       job.URL,
		Script:    job.Script,
		StartedAt: job.StartedAt,
	}
}
