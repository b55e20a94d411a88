// Package cmd implements the rosterctl command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"example.com/roster/internal/client"
)

const defaultServer = "http://localhost:8000"

// NewRootCmd builds the rosterctl command tree.
func NewRootCmd() *cobra.Command {
	var server string

	rootCmd := &cobra.Command{
		Use:          "rosterctl",
		Short:        "Inspect and change activity rosters",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&server, "server", envOr("ROSTER_SERVER", defaultServer), "roster API base URL (env ROSTER_SERVER)")

	newClient := func() *client.Client { return client.New(server) }
	rootCmd.AddCommand(
		newListCmd(newClient),
		newSignUpCmd(newClient),
		newUnregisterCmd(newClient),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
