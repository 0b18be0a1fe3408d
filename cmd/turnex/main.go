package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turnex-app/turnex/internal/interfaces/cli/migrate"
	"github.com/turnex-app/turnex/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "turnex",
		Short: "Turnex billing service",
		Long:  `Turnex subscription and payment reconciliation service with built-in server and migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
