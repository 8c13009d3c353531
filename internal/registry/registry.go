// Package registry tracks launched runner processes. The registry holds only
// a PID plus metadata; the OS scheduler owns the process itself. Liveness is
// refreshed lazily: List probes every entry and prunes the dead ones, so no
// background reaper is needed.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"locustmcp/internal/protocol"
)

// Mode distinguishes how a job was launched.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeHeadless    Mode = "headless"
)

// Job is the tracked metadata for one spawned runner process.
type Job struct {
	PID       int
	ID        string
	Mode      Mode
	Cmd       []string
	URL       string
	Script    string
	StartedAt time.Time
}

// Prober checks whether a process is still alive without disturbing it.
type Prober interface {
	Probe(pid int) bool
}

// Signaller delivers termination signals. Split from Prober so tests can
// exercise stop semantics without real processes.
type Signaller interface {
	Interrupt(pid int) error
	Kill(pid int) error
}

// Registry is a mutex-guarded PID→Job map. All operations are safe for
// concurrent use; each holds the single lock for its full duration, which is
// fine since they are O(len) and short-lived.
type Registry struct {
	mu        sync.Mutex
	jobs      map[int]Job
	prober    Prober
	signaller Signaller
	logger    *slog.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithProber replaces the default signal-based liveness probe.
func WithProber(p Prober) Option {
	return func(r *Registry) { r.prober = p }
}

// WithSignaller replaces the default signal delivery.
func WithSignaller(s Signaller) Option {
	return func(r *Registry) { r.signaller = s }
}

// New creates an empty registry with platform-default process control.
func New(logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		jobs:      make(map[int]Job),
		prober:    osProcessControl{},
		signaller: osProcessControl{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts or overwrites the entry for job.PID.
func (r *Registry) Register(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.PID] = job
	r.logger.Info("job registered", "pid", job.PID, "mode", job.Mode, "script", job.Script)
}

// List probes every tracked job and returns those still alive, pruning dead
// entries as a side effect. A job absent from one List call never reappears
// in a later one.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	alive := make([]Job, 0, len(r.jobs))
	for pid, job := range r.jobs {
		if !r.prober.Probe(pid) {
			delete(r.jobs, pid)
			r.logger.Info("pruned dead job", "pid", pid, "script", job.Script)
			continue
		}
		alive = append(alive, job)
	}
	return alive
}

// Stop terminates the job with pid: a graceful interrupt first, a forceful
// kill if that fails. The entry is removed unconditionally once either signal
// was attempted. stopped is true when at least one signal was delivered
// without error; if neither was, the error reports process_control_failure.
func (r *Registry) Stop(pid int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[pid]
	if !ok {
		return false, protocol.NotFoundf("no tracked job with pid %d", pid)
	}

	delete(r.jobs, pid)

	if err := r.signaller.Interrupt(pid); err == nil {
		r.logger.Info("job interrupted", "pid", pid, "script", job.Script)
		return true, nil
	}
	if err := r.signaller.Kill(pid); err == nil {
		r.logger.Warn("job killed after failed interrupt", "pid", pid, "script", job.Script)
		return true, nil
	}

	return false, protocol.ProcessControlFailuref("neither interrupt nor kill reached pid %d", pid)
}

// StopAll stops every tracked job, best effort. Used at server shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	pids := make([]int, 0, len(r.jobs))
	for pid := range r.jobs {
		pids = append(pids, pid)
	}
	r.mu.Unlock()

	for _, pid := range pids {
		if _, err := r.Stop(pid); err != nil {
			r.logger.Warn("stop during shutdown failed", "pid", pid, "error", err)
		}
	}
}
