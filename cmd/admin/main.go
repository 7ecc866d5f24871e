// Command webshop-admin runs maintenance tasks against the webshop database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"webshop/internal/config"
	"webshop/internal/database"
	"webshop/internal/models"
	"webshop/internal/repository"
	"webshop/internal/service"
	"webshop/internal/validation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// timeout bounds every command
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "webshop-admin",
	Short:         "Maintenance tasks for the webshop database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *pgxpool.Pool) error {
			return database.Migrate(ctx, db)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the built-in Admin and Customer roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(ctx context.Context, db *pgxpool.Pool) error {
			return newSeeder(db).SeedRoles(ctx)
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account with the Admin and Customer roles.

Nothing happens when a user with the same username or email already exists.`,
	RunE: runCreateAdmin,
}

var assignRoleCmd = &cobra.Command{
	Use:   "assign-role <username> <role>",
	Short: "Give an existing user a role",
	Args:  cobra.ExactArgs(2),
	RunE:  runAssignRole,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "maximum duration of the command")

	createAdminCmd.Flags().String("username", "", "login name")
	createAdminCmd.Flags().String("email", "", "email address")
	createAdminCmd.Flags().String("password", "", "password (defaults to $WEBSHOP_ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd, seedCmd, createAdminCmd, assignRoleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func withDB(parent context.Context, fn func(ctx context.Context, db *pgxpool.Pool) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := database.ConnectWithRetry(ctx, cfg.DatabaseURL, database.DefaultDatabaseConfig(), 3)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}

func newSeeder(db *pgxpool.Pool) *database.Seeder {
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	return database.NewSeeder(roles, users, service.NewUserService(users, roles, repository.NewTokenRepository(db)), logger)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("WEBSHOP_ADMIN_PASSWORD")
	}

	req := models.CreateUserRequest{Username: username, Email: email, Password: password}
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}

	return withDB(cmd.Context(), func(ctx context.Context, db *pgxpool.Pool) error {
		seeder := newSeeder(db)
		if err := seeder.SeedRoles(ctx); err != nil {
			return err
		}
		return seeder.EnsureAdmin(ctx, req.Username, req.Email, req.Password)
	})
}

func runAssignRole(cmd *cobra.Command, args []string) error {
	username, role := args[0], args[1]

	return withDB(cmd.Context(), func(ctx context.Context, db *pgxpool.Pool) error {
		users := repository.NewUserRepository(db)
		roles := repository.NewRoleRepository(db)

		user, err := users.GetByEmailOrUsername(ctx, username, username)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %q not found", username)
		}

		if err := service.NewUserService(users, roles, repository.NewTokenRepository(db)).AssignRole(ctx, user.ID, role); err != nil {
			return err
		}
		logger.Info().Str("username", user.Username).Str("role", role).Msg("Role assigned")
		return nil
	})
}
