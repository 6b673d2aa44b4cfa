package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/artem13815/freelance/pkg/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL не задан")
			}
			return postgres.Migrate(cmd.Context(), cfg.DatabaseURL, log)
		},
	}
}
