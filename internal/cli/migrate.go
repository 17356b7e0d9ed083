package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"social-insights-service/internal/infra/postgres"
	"social-insights-service/internal/infra/postgres/migrations"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := postgres.NewConnection(cfg.Database, false, log)
			if err != nil {
				return err
			}
			defer func() { _ = postgres.Close(db) }()

			if rollback {
				if err := migrations.Rollback(db, cfg.Changes.Channel); err != nil {
					return fmt.Errorf("rolling back: %w", err)
				}
				log.Info("rolled back last migration")
				return nil
			}

			if err := migrations.Run(db, cfg.Changes.Channel); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			log.Info("migrations applied", zap.String("channel", cfg.Changes.Channel))

			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration")

	return cmd
}
