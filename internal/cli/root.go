package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "locustmcp",
	Short: "MCP server for orchestrating Locust load-test jobs",
	Long: `locustmcp exposes Locust load testing to AI clients over MCP: it discovers
locustfiles in a workspace, converts HAR recordings via har2locust, launches
interactive or headless runs, and tracks the spawned runner processes.

Running 'locustmcp' without a subcommand is equivalent to 'locustmcp serve'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(introspectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to locustmcp.json config file (default: ./locustmcp.json)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
