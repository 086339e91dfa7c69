package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reviewpromax/internal/app"
	"reviewpromax/internal/client"
	"reviewpromax/internal/config"
	"reviewpromax/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "reviewctl",
		Short:        "Operations tooling for the ReviewProMax payments backend",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newSweepCmd())
	return root
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := client.InitDBClient(&cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := client.Migrate(db); err != nil {
				return err
			}
			log.Info("migration complete", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile a user's pending PayPal payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Services.Paypal.ReconcilePending(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("reconcile pending payments: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user whose pending payments are reconciled")
	cmd.MarkFlagRequired("user-id")

	return cmd
}
