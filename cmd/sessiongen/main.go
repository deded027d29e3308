package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/application"
	"github.com/example/booking-sessions/internal/config"
	httptransport "github.com/example/booking-sessions/internal/http"
	"github.com/example/booking-sessions/internal/logging"
	"github.com/example/booking-sessions/internal/metrics"
	"github.com/example/booking-sessions/internal/persistence/sqlite"
	"github.com/example/booking-sessions/internal/persistence/sqlite/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run starts the HTTP server, or with the "regenerate" argument regenerates
// every service once and returns.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  stderr,
		Service: "sessiongen",
	})
	ctx = logging.ContextWithLogger(ctx, logger)

	store, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLitePath), logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close storage")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	now := time.Now
	generator := application.NewSessionGenerationService(store.Services, store.Resources, store.Sessions, now, application.Options{
		Horizon: cfg.Horizon,
		Workers: cfg.Workers,
		Logger:  logger,
		Metrics: metrics.New(registry),
	})
	catalog := application.NewCatalogService(store.Services, store.Resources, store.Sessions, nil, now, logger)

	if len(args) > 0 {
		switch args[0] {
		case "regenerate":
			return generator.RegenerateAll(ctx)
		default:
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	if cfg.RegenerateOnStart {
		if err := generator.RegenerateAll(ctx); err != nil {
			logger.Warn().Err(err).Msg("startup regeneration reported failures")
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Services:          httptransport.NewServiceHandler(catalog, generator, logger),
		Resources:         httptransport.NewResourceHandler(catalog, logger),
		Metrics:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Health:            store.Ping,
		RegenerationLimit: 30,
		Logger:            logger,
	})

	return serve(ctx, cfg.HTTPPort, router, logger)
}

func serve(ctx context.Context, port int, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("session generator listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}
