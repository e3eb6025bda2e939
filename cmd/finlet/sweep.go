package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finlet/internal/auth"
	sl "finlet/internal/lib/logger"
	"finlet/internal/storage/postgres"

	"github.com/spf13/cobra"
)

const sweepInterval = 10 * time.Minute

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired sessions and verification tokens once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mustLoadConfig()
			log := sl.Setup(cfg.Env, cfg.LogLevel)

			ctx, cancel := signalContext(context.Background(), log)
			defer cancel()

			storage, err := postgres.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer storage.Close()

			authService := auth.New(log, storage, storage, storage, storage, authConfig(cfg))

			sessions, verifications, err := authService.Sweep(ctx)
			if err != nil {
				return err
			}

			log.Info("sweep done",
				slog.Int64("sessions", sessions),
				slog.Int64("verifications", verifications),
			)

			return nil
		},
	}
}

// runSweeper sweeps on every tick until ctx is done.
func runSweeper(ctx context.Context, log *slog.Logger, a *auth.Auth, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := a.Sweep(ctx); err != nil && ctx.Err() == nil {
				log.Error("sweep failed", sl.Err(err))
			}
		}
	}
}
