// Package cmd implements the crossposctl operator CLI: local account
// management, link-state inspection, and capability-token tooling.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openlore/crosspost/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "crossposctl",
	Short: "crossposctl manages one site's half of the crosspost federation",
	Long: `A command-line interface for operating a crosspost site: creating local
accounts, inspecting account-link state, and minting or inspecting the
capability tokens that secure cross-site calls.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(tokenCmd)
}
