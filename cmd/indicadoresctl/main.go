// Command indicadoresctl runs maintenance tasks against the indicator
// database: migrations, CSV exports, roster imports and rule listings.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/app"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/observability"
)

var (
	logger *zap.Logger

	// loadApp builds the application for commands that touch storage.
	loadApp = buildApp
)

var rootCmd = &cobra.Command{
	Use:           "indicadoresctl",
	Short:         "Maintenance commands for the indicator system",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err = observability.NewLogger(cfg.Logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, exportCmd, importCmd, rulesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, *cfg, logger, app.Options{SkipRedis: true})
}

// operator is the actor used for commands run from a shell.
func operator() domain.Profile {
	return domain.Profile{Nome: "indicadoresctl", Role: domain.RoleGeral}
}
