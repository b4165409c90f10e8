package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if err := runMigrations(ctx, cfg, log); err != nil {
				log.Error("Migrations failed: %v", err)
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
