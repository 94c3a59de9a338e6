package main

import (
	"os"

	"github.com/spf13/cobra"

	"kinora/internal/interfaces/cli/migrate"
	"kinora/internal/interfaces/cli/seed"
	"kinora/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinora",
		Short: "Kinora - movie streaming backend",
		Long:  `Kinora is a movie streaming backend with built-in server, migration tools and seeding commands.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
