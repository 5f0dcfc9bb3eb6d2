package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/filmgate/filmgate/internal/auth"
	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/config"
	"github.com/filmgate/filmgate/internal/http/rest"
	"github.com/filmgate/filmgate/internal/logctx"
	"github.com/filmgate/filmgate/internal/storage/sqlite"
	"github.com/filmgate/filmgate/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := slog.New(logctx.NewTraceHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("filmgate starting...", "log_level", cfg.LogLevel)

	if err := run(logctx.WithLogger(ctx, logger), cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Database
	database, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer database.Close()

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: "filmgate",
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}

	// =========================================================================
	// Wire Catalog and Gate
	movies := sqlite.NewInstrumentedMovieRepository(database, tel)
	settings := sqlite.NewSettingsRepository(database)

	svc := catalog.NewService(movies, cfg.StorageTimeout)
	gate := auth.NewGate(settings, cfg.Admin.DefaultPassword, cfg.Admin.SessionTTL)

	// =========================================================================
	// Start API Service
	server := setupServer(ctx, svc, gate, tel, cfg)

	metricsServer := &http.Server{
		Addr:    cfg.Telemetry.BindAddress,
		Handler: tel.Handler(),
	}

	wg, ctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		logger.Info("initializing API support", "host", cfg.Web.BindAddress)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	if cfg.Telemetry.Enabled {
		wg.Go(func() error {
			logger.Info("initializing metrics endpoint", "host", cfg.Telemetry.BindAddress)

			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server error: %w", err)
			}

			return nil
		})
	}

	wg.Go(func() error {
		<-ctx.Done()
		logger.Info("start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to gracefully shutdown the server", "err", err)

			if err = server.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}

		return metricsServer.Shutdown(shutdownCtx)
	})

	return wg.Wait()
}

// setupServer prepares the handlers and middleware for the http rest server.
func setupServer(ctx context.Context, svc *catalog.Service, gate *auth.Gate, tel *telemetry.Telemetry, cfg *config.Config) *http.Server {
	r := chi.NewRouter()

	r.Use(telemetry.RequestID)
	r.Use(telemetry.HTTPLogging)
	r.Use(telemetry.NewHTTPMiddleware(tel).Middleware)

	r.Mount("/movies", rest.NewCatalogHandler(svc, tel).Routes())
	r.Mount("/admin", rest.NewAdminHandler(svc, gate, tel, cfg.Admin.SessionTTL).Routes())

	return &http.Server{
		Addr:         cfg.Web.BindAddress,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
