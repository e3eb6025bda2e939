package main

import (
	"context"
	"fmt"
	"log/slog"

	sl "finlet/internal/lib/logger"
	"finlet/internal/storage/postgres"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := postgres.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			cfg := mustLoadConfig()
			log := sl.Setup(cfg.Env, cfg.LogLevel)

			ctx, cancel := signalContext(context.Background(), log)
			defer cancel()

			if err := postgres.Migrate(ctx, cfg.DatabaseURL, command); err != nil {
				return fmt.Errorf("migrate %s: %w", command, err)
			}

			log.Info("migrations done", slog.String("command", command))

			return nil
		},
	}
}
