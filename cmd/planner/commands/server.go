package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arrangemylist/planner/internal/adapters/repository"
	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/database"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Arrange My List API server",
		Long:  "Start the API server with all configured routes and middleware. Stops gracefully on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(_ *config.Config, db *database.DB) error {
				if err := db.MigrateUp(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration up completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(_ *config.Config, db *database.DB) error {
				if err := db.MigrateDown(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration down completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(_ *config.Config, db *database.DB) error {
				version, dirty, err := db.MigrationVersion()
				if err != nil {
					return fmt.Errorf("failed to get migration version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create accounts directly in the database",
	}

	var username, email, password, displayName string
	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" || password == "" {
				return errors.New("username, email, and password are required")
			}
			return withDatabase(func(cfg *config.Config, db *database.DB) error {
				user, err := createUser(cmd.Context(), cfg, db, username, email, password, displayName)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "User created successfully:\n")
				fmt.Fprintf(out, "  ID: %d\n", user.ID)
				fmt.Fprintf(out, "  Username: %s\n", user.Username)
				fmt.Fprintf(out, "  Email: %s\n", user.Email)
				fmt.Fprintf(out, "  Display name: %s\n", user.DisplayName)
				return nil
			})
		},
	}

	createUserCmd.Flags().StringVar(&username, "username", "", "Username (required)")
	createUserCmd.Flags().StringVar(&email, "email", "", "User email (required)")
	createUserCmd.Flags().StringVar(&password, "password", "", "User password (required)")
	createUserCmd.Flags().StringVar(&displayName, "display-name", "", "Display name, defaults to the username")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the planner version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Arrange My List planner %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", commit)
		},
	}
}

func runServer(ctx context.Context, migrateFirst bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	if cfg.OnLogLevelChange(func(level string) {
		if err := appLogger.SetLevel(level); err != nil {
			appLogger.Warnw("Ignoring invalid log level from config", "level", level, "error", err.Error())
			return
		}
		appLogger.Infow("Log level changed", "level", level)
	}) {
		appLogger.Debugw("Watching config file for log level changes")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrateFirst {
		if err := db.MigrateUp(); err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting Arrange My List API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"database", db.Driver(),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	appLogger.Infow("Server stopped")
	return nil
}

func withDatabase(fn func(cfg *config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return fn(cfg, db)
}

func createUser(ctx context.Context, cfg *config.Config, db *database.DB, username, email, password, displayName string) (*entities.User, error) {
	userRepo := repository.NewUserRepository(db.DB)
	auth := services.NewAuthService(userRepo, repository.NewSessionRepository(db.DB), cfg.Session, cfg.Security.BcryptCost, logger.NewNop())

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	exists, err := userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entities.ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = username
	}

	user := &entities.User{Username: username, Email: email, PasswordHash: hash, DisplayName: displayName}
	if err := userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
