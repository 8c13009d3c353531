package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"locustmcp/internal/discovery"
	"locustmcp/internal/introspect"
)

// discoverCmd and introspectCmd run the discovery and parsing layers directly
// from a shell, without the MCP transport. Handy for checking what a client
// would see.

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List candidate locustfiles in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root := cfg.ResolveWorkspaceRoot(cfgPath)

		found, err := discovery.FindAll(root)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no locustfile found under %s", root)
		}

		out := cmd.OutOrStdout()
		for _, sf := range found {
			fmt.Fprintln(out, sf.Path)
		}
		return nil
	},
}

var introspectCmd = &cobra.Command{
	Use:   "introspect <script>",
	Short: "Show the task names and tag labels declared in a locustfile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		root := cfg.ResolveWorkspaceRoot(cfgPath)

		parsed, err := introspect.ParseFile(root, args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(map[string]any{
			"path":  parsed.Path,
			"tasks": parsed.Tasks,
			"tags":  parsed.Tags,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
