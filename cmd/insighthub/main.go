package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"insighthub/internal/config"
	"insighthub/internal/logging"
	"insighthub/internal/server"
	"insighthub/internal/storage"
	"insighthub/internal/storage/memory"
	"insighthub/internal/storage/mongo"
	"insighthub/internal/storage/sqlite"
)

var version = "dev"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	configFlag := flag.String("config", os.Getenv("INSIGHTHUB_CONFIG"), "Path to YAML config file")
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	driverFlag := flag.String("driver", "", "Storage driver: sqlite, mongo or memory (overrides config)")
	dbFlag := flag.String("db", "", "Path to sqlite database file (overrides config)")
	staticFlag := flag.String("static", "", "Directory with built frontend (overrides config)")
	seedFlag := flag.Bool("seed", false, "Seed an empty store with sample projects")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlags(cfg, *addrFlag, *driverFlag, *dbFlag, *staticFlag, *seedFlag)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	logger.Info("InsightHub API", slog.String("version", version))

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("unable to open store", slog.String("driver", cfg.Storage.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Server.Seed {
		n, err := storage.Seed(ctx, store)
		if err != nil {
			logger.Error("seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if n > 0 {
			logger.Info("seeded sample projects", slog.Int("count", n))
		}
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty, /api is unauthenticated")
	}

	srv := server.New(store, logger, server.Options{
		StaticDir:      cfg.Server.StaticDir,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("driver", cfg.Storage.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

func applyFlags(cfg *config.Config, addr, driver, db, static string, seed bool) {
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if driver != "" {
		cfg.Storage.Driver = strings.ToLower(driver)
	}
	if db != "" {
		cfg.Storage.SQLitePath = db
	}
	if static != "" {
		cfg.Server.StaticDir = static
	}
	if seed {
		cfg.Server.Seed = true
	}
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath, logger)
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	case config.DriverMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
