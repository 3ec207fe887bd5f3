package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marquee-hq/marquee/config"
	"github.com/marquee-hq/marquee/internal/api"
	"github.com/marquee-hq/marquee/internal/auth"
	"github.com/marquee-hq/marquee/internal/core"
	"github.com/marquee-hq/marquee/internal/store/postgres"
)

var (
	// Build-time variables (set via ldflags)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marquee-server",
		Short: "Marquee casting-agency API server",
		Long:  "REST backend for actors, movies and their casting associations with permission-gated endpoints.",
		RunE:  runServer,
	}

	rootCmd.Flags().StringP("config", "c", "", "Path to configuration file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Marquee Server\n")
			fmt.Printf("Version: %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Build Time: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE:  runMigrations,
	}
	migrateCmd.Flags().StringP("config", "c", "", "Path to configuration file")
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.Logging)
	logger.Info().Str("version", version).Str("commit", commit).Msg("starting marquee server")

	store, err := postgres.NewPostgresStore(cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		migrator := postgres.NewMigrator(store.GetPool())
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info().Msg("database migrations completed")
	}

	engine := core.NewEngine(store, logger)
	verifier := auth.NewJWTVerifier(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := api.NewRouter(engine, verifier, logger, api.Options{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimitPerMin:  cfg.RateLimit.Rate,
		RateLimitBurst:   cfg.RateLimit.Burst,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.GetServerAddress()).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverChan:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server shutdown completed")
	return nil
}

func runMigrations(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.Logging)

	store, err := postgres.NewPostgresStore(cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	migrator := postgres.NewMigrator(store.GetPool())
	if err := migrator.Run(context.Background()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info().Msg("database migrations completed")
	return nil
}

func setupLogging(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Str("service", "marquee").Logger()
}
