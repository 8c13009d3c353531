package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"locustmcp/internal/config"
	"locustmcp/internal/generator"
	"locustmcp/internal/joblog"
	"locustmcp/internal/launcher"
	"locustmcp/internal/registry"
	"locustmcp/internal/toolserver"
	"locustmcp/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tool surface over stdio",
	Long: `Serve the MCP tool surface over stdio. Stdout carries the MCP transport,
so all logging goes to stderr.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("loaded configuration", "path", cfgPath)

	if err := cfg.Validate(); err != nil {
		return err
	}

	root := cfg.ResolveWorkspaceRoot(cfgPath)
	logger.Info("workspace root", "path", root)

	if err := workspace.Initialize(root); err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}

	events, err := joblog.Open(filepath.Join(root, workspace.LogsDir, workspace.JobLogFile), logger)
	if err != nil {
		return fmt.Errorf("failed to open job event log: %w", err)
	}

	service := newService(cfg, root, events, logger)
	server := toolserver.NewServer(service, logger)
	return server.Start(context.Background())
}

// newService wires the orchestration components from a validated config.
func newService(cfg *config.Config, root string, events *joblog.Log, logger *slog.Logger) *toolserver.Service {
	reg := registry.New(logger)
	return &toolserver.Service{
		Root: root,
		Bridge: &generator.Bridge{
			Command: cfg.Generator,
			Root:    root,
			Logger:  logger,
		},
		Launcher: &launcher.Launcher{
			Runner:       cfg.Runner,
			Root:         root,
			PortStart:    cfg.Ports.Start,
			PortMaxTries: cfg.Ports.MaxTries,
			Registry:     reg,
			Logger:       logger,
		},
		Registry: reg,
		Events:   events,
		Logger:   logger,
	}
}

// loadConfig loads the file named by --config, falling back to
// ./locustmcp.json, falling back to defaults when no file exists at all.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, abs, nil
	}

	abs, err := filepath.Abs(config.DefaultFileName)
	if err != nil {
		return nil, "", err
	}
	if _, statErr := os.Stat(abs); statErr == nil {
		cfg, err := config.LoadFromFile(abs)
		if err != nil {
			return nil, "", err
		}
		return cfg, abs, nil
	}

	return config.GenerateDefault(), abs, nil
}

// newLogger builds the process logger. Stderr only: stdout belongs to the
// MCP transport.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
