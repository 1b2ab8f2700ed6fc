package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"traffic-service/internal/auth"
	"traffic-service/internal/config"
	"traffic-service/internal/db"
	"traffic-service/internal/logger"
	"traffic-service/internal/model"
	"traffic-service/internal/repository"
	"traffic-service/internal/service"
)

const commandTimeout = time.Minute

func main() {
	rootCmd := &cobra.Command{
		Use:          "trafficctl",
		Short:        "Operator commands for the traffic violation service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(seedViolationTypesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	db  *gorm.DB
	log zerolog.Logger
}

func connect(migrate bool) (*env, error) {
	cfg, err := config.LoadTooling()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.Environment)

	open := db.Open
	if migrate {
		open = db.New
	}
	database, err := open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return &env{cfg: cfg, db: database, log: log}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(true)
			if err != nil {
				return err
			}
			e.log.Info().Msg("schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var input service.AdminInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(false)
			if err != nil {
				return err
			}
			input.Role = model.UserRole(role)
			if input.Password == "" {
				input.Password = os.Getenv("ADMIN_PASSWORD")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			timeout := e.cfg.DB.QueryTimeout
			accounts := service.NewAccountService(
				repository.NewOfficerRepository(e.db, timeout),
				repository.NewAdminRepository(e.db, timeout),
				auth.NewParser("", 0),
				e.log,
			)
			admin, err := accounts.CreateAdmin(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", admin.Role, admin.Username, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "login name")
	cmd.Flags().StringVar(&input.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.UserRoleAdmin), "supervisor, manager or admin")
	cmd.Flags().StringVar(&input.Password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("full-name")

	return cmd
}

func seedViolationTypesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-violation-types",
		Short: "Insert or update the violation type catalogue",
		Long: `Upserts violation types by name. Without --file the built-in
catalogue is used; a file is a YAML list of entries with name, base_fine,
description and active fields.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			types := defaultViolationTypes()
			if file != "" {
				loaded, err := loadViolationTypes(file)
				if err != nil {
					return err
				}
				types = loaded
			}

			e, err := connect(false)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			timeout := e.cfg.DB.QueryTimeout
			violations := service.NewViolationService(
				repository.NewScopeRepository(e.db, timeout),
				repository.NewViolationRepository(e.db, timeout),
				repository.NewViolationTypeRepository(e.db, timeout),
				service.NewTicketGenerator(e.cfg.Ticket.Prefix),
				e.cfg.Location,
			)
			if err := violations.SeedTypes(ctx, types); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d violation types\n", len(types))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalogue to load")
	return cmd
}
