package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"desk-reservation-backend/config"
	"desk-reservation-backend/internal/api"
	"desk-reservation-backend/internal/confirm"
	"desk-reservation-backend/internal/db"
	"desk-reservation-backend/internal/logger"
	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/notification"
	"desk-reservation-backend/internal/schedule"
	"desk-reservation-backend/internal/session"
	"desk-reservation-backend/internal/store"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	log.Info().Str("path", configPath).Msg("configuration loaded")
	for _, warning := range cfg.Warnings {
		log.Warn().Str("path", configPath).Msg(warning)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server gracefully stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// Initialize database
	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database initialized")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	desks := desksFromConfig(cfg.Desks)

	engineOpts := []schedule.Option{schedule.WithLogger(log)}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}

		names := make(map[int64]string, len(desks))
		for _, d := range desks {
			names[d.ID] = d.Name
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, names, log)
		workerPool.Start(ctx)
		engineOpts = append(engineOpts, schedule.WithNotifier(workerPool))
		log.Info().Int("workers", cfg.WorkerPool.Size).Msg("desk-freed notifications enabled")
	} else {
		log.Warn().Msg("VAPID keys are not configured; desk-freed notifications disabled")
	}

	engine := schedule.NewEngine(appStore, desks, confirm.NewGenerator(cfg.QR.Size), engineOpts...)

	router, err := api.NewRouter(api.Options{
		Store:        appStore,
		Engine:       engine,
		Sessions:     session.NewManager(cfg.Session),
		Webpush:      webpushOptions,
		Logger:       log,
		TemplatesDir: cfg.Server.TemplatesDir,
		RateLimit:    rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst:    cfg.Server.RateLimitBurst,
		CacheTTL:     time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutdown signal received, stopping services")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

// desksFromConfig builds the desk list; desks are available unless the
// config says otherwise.
func desksFromConfig(cfgDesks []config.DeskConfig) []model.Desk {
	desks := make([]model.Desk, 0, len(cfgDesks))
	for _, d := range cfgDesks {
		available := true
		if d.Available != nil {
			available = *d.Available
		}
		desks = append(desks, model.Desk{ID: d.ID, Name: d.Name, Available: available})
	}
	return desks
}
