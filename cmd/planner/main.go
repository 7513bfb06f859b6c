package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arrangemylist/planner/cmd/planner/commands"
)

// Set through -ldflags at build time
var (
	version = "dev"
	commit  = "development"
)

// @title Arrange My List API
// @version 1.0
// @description Calendar, kanban board and notes behind a session cookie.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name arrange_my_list_session

func main() {
	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Arrange My List planner",
		Long:          `Arrange My List combines a calendar, a kanban task board and notes. The same binary runs the API server and a terminal client for it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := &commands.ClientFlags{}

	// Server side
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())

	// Client side
	rootCmd.AddCommand(commands.NewBoardCommand(flags))
	rootCmd.AddCommand(commands.NewCalendarCommand(flags))
	rootCmd.AddCommand(commands.NewNotesCommand(flags))
	rootCmd.AddCommand(commands.NewImportCommand(flags))

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
