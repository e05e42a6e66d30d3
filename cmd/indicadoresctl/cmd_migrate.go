package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/persistence"
	"github.com/medmais/sistema-indicadores/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	applied, err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), migrations.FS, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", applied)
	return nil
}
