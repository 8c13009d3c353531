// Package generator bridges to the external har2locust tool: it turns a
// captured HTTP recording into locustfile source by running the generator as
// a subprocess. The bridge never parses or edits the generated source; it is
// returned verbatim, and persistence is a separate explicit step.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"locustmcp/internal/fsutil"
	"locustmcp/internal/protocol"
)

// Options are the recognized generator flags. Zero-valued fields are omitted
// from the argument vector; nothing else is forwarded.
type Options struct {
	Template       string `json:"template,omitempty"`
	Plugins        string `json:"plugins,omitempty"`
	DisablePlugins string `json:"disable_plugins,omitempty"`
	ResourceTypes  string `json:"resource_types,omitempty"`
	LogLevel       string `json:"loglevel,omitempty"`
}

// Args maps the options to the generator's argument vector, input path last.
// Pure; covered without spawning anything.
func (o Options) Args(inputPath string) []string {
	var args []string
	if o.Template != "" {
		args = append(args, "--template", o.Template)
	}
	if o.Plugins != "" {
		args = append(args, "--plugins", o.Plugins)
	}
	if o.DisablePlugins != "" {
		args = append(args, "--disable-plugins", o.DisablePlugins)
	}
	if o.ResourceTypes != "" {
		args = append(args, "--resource-types", o.ResourceTypes)
	}
	if o.LogLevel != "" {
		args = append(args, "--loglevel", o.LogLevel)
	}
	return append(args, inputPath)
}

// Bridge invokes the generator command. Command is the full vector the tool
// is reached through (for har2locust typically ["python", "-m", "har2locust"]),
// so a wrapper script or venv interpreter slots in without special cases.
type Bridge struct {
	Command []string
	Root    string
	Logger  *slog.Logger
}

// Convert runs the generator against inputPath and returns its stdout
// verbatim as the generated script source. A non-zero exit reports
// external_tool_failure carrying stderr, falling back to stdout when stderr
// is empty.
func (b *Bridge) Convert(ctx context.Context, inputPath string, opts Options) (string, error) {
	if len(b.Command) == 0 {
		return "", protocol.InvalidInputf("generator command not configured")
	}

	resolved, err := fsutil.ResolvePath(b.Root, inputPath)
	if err != nil {
		return "", protocol.InvalidInputf("recording path %s: %v", inputPath, err)
	}
	if _, err := os.Stat(resolved); err != nil {
		return "", protocol.NotFoundf("recording %s: %v", inputPath, err)
	}

	argv := append(append([]string{}, b.Command[1:]...), opts.Args(resolved)...)
	cmd := exec.CommandContext(ctx, b.Command[0], argv...)
	cmd.Dir = b.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.Logger.Info("running generator", "cmd", b.Command[0], "args", argv)

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", protocol.ExternalToolFailure(
			fmt.Sprintf("generator failed for %s: %v", inputPath, err), detail)
	}

	return stdout.String(), nil
}

// Persist writes code to dest under the bridge's workspace root, creating
// missing parent directories, and returns the absolute path written.
func (b *Bridge) Persist(code, dest string) (string, error) {
	resolved, err := fsutil.ResolvePath(b.Root, dest)
	if err != nil {
		return "", protocol.InvalidInputf("destination %s: %v", dest, err)
	}
	if err := fsutil.AtomicWrite(resolved, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("persist generated script: %w", err)
	}
	b.Logger.Info("generated script written", "path", resolved)
	return resolved, nil
}
