// Package config loads and validates the locustmcp.json configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the config file searched for next to the working
// directory when no explicit path is given.
const DefaultFileName = "locustmcp.json"

// Config is the locustmcp.json configuration file.
type Config struct {
	Version       string   `json:"version"`
	WorkspaceRoot string   `json:"workspace_root"`
	Runner        []string `json:"runner"`
	Generator     []string `json:"generator"`
	Ports         Ports    `json:"ports"`
	DefaultHost   string   `json:"default_host,omitempty"`
	LogLevel      string   `json:"log_level,omitempty"`
}

// Ports bounds the web-port search window for interactive runs.
type Ports struct {
	Start    int `json:"start"`
	MaxTries int `json:"max_tries"`
}

// GenerateDefault returns a Config with working defaults: locust on PATH,
// har2locust through the python module runner, and the Locust web UI port
// range.
func GenerateDefault() *Config {
	return &Config{
		Version:       "1.0",
		WorkspaceRoot: ".",
		Runner:        []string{"locust"},
		Generator:     []string{"python", "-m", "har2locust"},
		Ports: Ports{
			Start:    8089,
			MaxTries: 100,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration and returns hint-bearing messages for
// the common mistakes.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("configuration error: missing required field 'version'\n\nHint: Add a version field like:\n  \"version\": \"1.0\"")
	}
	if c.WorkspaceRoot == "" {
		return fmt.Errorf("configuration error: missing required field 'workspace_root'\n\nHint: Point it at the directory holding your locustfiles:\n  \"workspace_root\": \".\"")
	}
	if len(c.Runner) == 0 {
		return fmt.Errorf("configuration error: empty 'runner' command\n\nHint: Specify how to invoke locust:\n  \"runner\": [\"locust\"]")
	}
	if len(c.Generator) == 0 {
		return fmt.Errorf("configuration error: empty 'generator' command\n\nHint: Specify how to invoke har2locust:\n  \"generator\": [\"python\", \"-m\", \"har2locust\"]")
	}
	if c.Ports.Start <= 0 || c.Ports.Start > 65535 {
		return fmt.Errorf("configuration error: 'ports.start' %d out of range\n\nHint: Use a free user-range port:\n  \"ports\": {\"start\": 8089, \"max_tries\": 100}", c.Ports.Start)
	}
	if c.Ports.MaxTries <= 0 {
		return fmt.Errorf("configuration error: 'ports.max_tries' must be positive, got %d", c.Ports.MaxTries)
	}
	return nil
}

// LoadFromFile loads a configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// SaveToFile writes the configuration as indented JSON.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ResolveWorkspaceRoot makes the workspace root absolute, interpreting a
// relative root against the config file's directory so the config works no
// matter where the server is started from.
func (c *Config) ResolveWorkspaceRoot(configPath string) string {
	if filepath.IsAbs(c.WorkspaceRoot) {
		return filepath.Clean(c.WorkspaceRoot)
	}
	base := filepath.Dir(configPath)
	return filepath.Clean(filepath.Join(base, c.WorkspaceRoot))
}
