// Package cmd implements the CLI commands for cartsync.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cartsync",
	Short: "Keep every cart widget on a storefront page in sync",
	Long: "cartsync hosts a storefront page, applies debounced quantity edits and removals\n" +
		"against the remote cart API, and keeps every cart widget on the page consistent\n" +
		"with the authoritative snapshot the API returns.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
