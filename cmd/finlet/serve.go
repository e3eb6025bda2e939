package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finlet/internal/auth"
	"finlet/internal/config"
	"finlet/internal/events"
	server "finlet/internal/http_server"
	"finlet/internal/http_server/middleware/ratelimit"
	sl "finlet/internal/lib/logger"
	"finlet/internal/metrics"
	"finlet/internal/rabbitmq"
	"finlet/internal/seed"
	"finlet/internal/storage/postgres"
	"finlet/internal/storage/redis"
	"finlet/internal/telemetry"

	"github.com/go-chi/httprate"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(mustLoadConfig())
		},
	}
}

func serve(cfg *config.Config) error {
	log := sl.Setup(cfg.Env, cfg.LogLevel)

	log.Info("starting finlet", slog.String("env", cfg.Env), slog.Int("port", cfg.Port))

	ctx, cancel := signalContext(context.Background(), log)
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.Otel.Endpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("telemetry shutdown error", sl.Err(err))
		}
	}()

	storage, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer storage.Close()

	m := metrics.New()

	opts := []auth.Option{auth.WithRecorder(m)}

	if cfg.RabbitMQ.URL != "" {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer msgBroker.Close()

		opts = append(opts, auth.WithPublisher(msgBroker))
	} else {
		log.Warn("RABBITMQ_URL is empty, verification links will only be logged")
	}

	opts = append(opts, auth.WithHook("seed", seed.New(log, storage).Hook()))

	if cfg.NATS.URL != "" {
		bus, err := events.New(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer bus.Close()

		opts = append(opts, auth.WithHook("events", events.AccountCreatedHook(bus, cfg.NATS.Subject)))
	}

	var counters ratelimit.CounterFactory
	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		counters = func(name string) httprate.LimitCounter {
			return rdb.LimitCounter(serviceName + ":ratelimit:" + name)
		}
	}

	authService := auth.New(log, storage, storage, storage, storage, authConfig(cfg), opts...)
	defer authService.Wait()

	go runSweeper(ctx, log, authService, sweepInterval)

	router := server.NewRouter(server.Deps{
		Log:            log,
		Auth:           authService,
		Store:          storage,
		Metrics:        m,
		Limits:         ratelimit.New(counters),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      telemetry.Handler(router, serviceName),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	return nil
}

func authConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		BaseURL:           cfg.Auth.BaseURL,
		Secret:            cfg.Auth.Secret,
		SessionTTL:        cfg.Auth.SessionTTL,
		UpdateAge:         cfg.Auth.SessionUpdateAge,
		VerificationTTL:   cfg.Auth.VerificationTTL,
		CookieSecure:      cfg.Auth.CookieSecure,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)

		select {
		case <-sigs:
			log.Info("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
