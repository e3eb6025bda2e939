package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "finlet/internal/lib/logger"
	"finlet/internal/mailer"
	"finlet/internal/rabbitmq"

	"github.com/spf13/cobra"
)

func mailerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mailer",
		Short: "Deliver queued emails over SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mustLoadConfig()
			log := sl.Setup(cfg.Env, cfg.LogLevel)

			if cfg.RabbitMQ.URL == "" || cfg.SMTP.Host == "" {
				return errors.New("mailer needs RABBITMQ_URL and SMTP_HOST")
			}

			ctx, cancel := signalContext(context.Background(), log)
			defer cancel()

			msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
			if err != nil {
				return fmt.Errorf("connect rabbitmq: %w", err)
			}
			defer msgBroker.Close()

			m := mailer.New(log, cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)

			log.Info("mailer is running", slog.String("queue", cfg.RabbitMQ.Queue))

			if err := msgBroker.StartReading(ctx, m.Handle); err != nil {
				return err
			}

			log.Info("mailer stopped")

			return nil
		},
	}
}
