package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/trackbench/core/cmd/api/commands"
)

// @title Trackbench API
// @version 1.0
// @description Multi-tenant task tracking with session-scoped consolidation

// @contact.name Trackbench Support
// @contact.url https://github.com/trackbench/core

// @license.name MIT
// @license.url https://github.com/trackbench/core/blob/main/LICENSE

// @host localhost:3000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "trackbench",
		Short: "Trackbench API Server",
		Long:  `Trackbench is a multi-tenant task tracking service with a session-scoped task query engine and a consolidated server+local task view.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
