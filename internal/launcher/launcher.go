// Package launcher spawns the external runner (locust) in interactive or
// headless mode. Argument vectors are built by pure functions so the flag
// mapping is testable without spawning anything; the spawn paths wire the
// resulting processes into the registry and the port allocator.
package launcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"

	"locustmcp/internal/discovery"
	"locustmcp/internal/ports"
	"locustmcp/internal/protocol"
	"locustmcp/internal/registry"
)

// HeadlessParams are the knobs for a blocking headless run, mapped one-to-one
// onto runner flags.
type HeadlessParams struct {
	Host      string
	Users     int
	SpawnRate float64
	Duration  string
	Tags      string
	Tasks     string
}

// HeadlessResult reports a finished headless run. Stdout and Stderr are
// verbatim regardless of exit status.
type HeadlessResult struct {
	OK     bool
	Stdout string
	Stderr string
}

// InteractiveArgs builds the runner argument vector for an interactive run
// exposing the web interface on port.
func InteractiveArgs(script, host string, port int) []string {
	args := []string{"-f", script}
	if host != "" {
		args = append(args, "--host", host)
	}
	return append(args, "--web-port", strconv.Itoa(port))
}

// HeadlessArgs builds the runner argument vector for a headless run.
func HeadlessArgs(script string, p HeadlessParams) []string {
	args := []string{
		"-f", script,
		"--headless",
		"-u", strconv.Itoa(p.Users),
		"-r", strconv.FormatFloat(p.SpawnRate, 'f', -1, 64),
		"-t", p.Duration,
	}
	if p.Host != "" {
		args = append(args, "--host", p.Host)
	}
	if p.Tags != "" {
		args = append(args, "--tags", p.Tags)
	}
	if p.Tasks != "" {
		args = append(args, "--tasks", p.Tasks)
	}
	return args
}

// Launcher spawns runner processes against scripts resolved under Root.
type Launcher struct {
	Runner       []string
	Root         string
	PortStart    int
	PortMaxTries int
	Registry     *registry.Registry
	Logger       *slog.Logger
}

// LaunchInteractive resolves script under the workspace root, allocates a web
// port when none is supplied, and spawns the runner detached. The call
// returns as soon as the process has started; whether the web interface is
// ready yet is the caller's concern.
func (l *Launcher) LaunchInteractive(ctx context.Context, script, host string, port int) (registry.Job, error) {
	if len(l.Runner) == 0 {
		return registry.Job{}, protocol.InvalidInputf("runner command not configured")
	}

	resolved, err := discovery.Resolve(l.Root, script)
	if err != nil {
		return registry.Job{}, err
	}

	if port == 0 {
		port, err = ports.Allocate(l.PortStart, l.PortMaxTries)
		if err != nil {
			return registry.Job{}, err
		}
	}

	argv := append(append([]string{}, l.Runner[1:]...), InteractiveArgs(resolved.Path, host, port)...)
	cmd := exec.Command(l.Runner[0], argv...)
	cmd.Dir = l.Root
	detach(cmd) // own process group so stop signals never reach this server

	if err := cmd.Start(); err != nil {
		return registry.Job{}, protocol.ExternalToolFailure(
			fmt.Sprintf("spawn runner for %s", resolved.Name), err.Error())
	}

	// The process outlives this call on purpose; Wait in the background so
	// the child is reaped when it exits on its own.
	go func() { _ = cmd.Wait() }()

	job := registry.Job{
		PID:       cmd.Process.Pid,
		ID:        uuid.NewString(),
		Mode:      registry.ModeInteractive,
		Cmd:       append([]string{l.Runner[0]}, argv...),
		URL:       fmt.Sprintf("http://localhost:%d", port),
		Script:    resolved.Path,
		StartedAt: time.Now().UTC(),
	}
	l.Registry.Register(job)

	l.Logger.Info("interactive run started", "pid", job.PID, "url", job.URL, "script", resolved.Name)
	return job, nil
}

// RunHeadless resolves script, spawns the runner with the headless flag set,
// and blocks until it exits. OK mirrors a zero exit code. There is no
// internal timeout: the run's own duration flag, or the caller's context,
// bounds it.
func (l *Launcher) RunHeadless(ctx context.Context, script string, p HeadlessParams) (HeadlessResult, error) {
	if len(l.Runner) == 0 {
		return HeadlessResult{}, protocol.InvalidInputf("runner command not configured")
	}
	if p.Users <= 0 {
		return HeadlessResult{}, protocol.InvalidInputf("users must be positive, got %d", p.Users)
	}
	if p.SpawnRate <= 0 {
		return HeadlessResult{}, protocol.InvalidInputf("spawn rate must be positive, got %v", p.SpawnRate)
	}
	if p.Duration == "" {
		return HeadlessResult{}, protocol.InvalidInputf("duration is required for headless runs")
	}

	resolved, err := discovery.Resolve(l.Root, script)
	if err != nil {
		return HeadlessResult{}, err
	}

	argv := append(append([]string{}, l.Runner[1:]...), HeadlessArgs(resolved.Path, p)...)
	cmd := exec.CommandContext(ctx, l.Runner[0], argv...)
	cmd.Dir = l.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	l.Logger.Info("headless run starting", "script", resolved.Name, "users", p.Users, "duration", p.Duration)

	runErr := cmd.Run()
	result := HeadlessResult{
		OK:     runErr == nil,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		if _, isExit := runErr.(*exec.ExitError); !isExit {
			// The runner never started; that is a tool failure, not a test result.
			return result, protocol.ExternalToolFailure(
				fmt.Sprintf("spawn runner for %s", resolved.Name), runErr.Error())
		}
		l.Logger.Warn("headless run exited non-zero", "script", resolved.Name, "error", runErr)
	}

	return result, nil
}
