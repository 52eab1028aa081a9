package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/cache"
	"github.com/raaihank/grammar-sentinel/internal/config"
	"github.com/raaihank/grammar-sentinel/internal/history"
	"github.com/raaihank/grammar-sentinel/internal/logger"
	"github.com/raaihank/grammar-sentinel/internal/server"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.String("health-check", "", "Check the health endpoint at this address (e.g. localhost:8080) and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("grammar-sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck != "" {
		performHealthCheck(*healthCheck)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting grammar-sentinel",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	var deps server.Dependencies

	if cfg.Cache.Enabled {
		resultCache, err := cache.NewResultCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			// The service stays usable without Redis.
			log.Warn("Result cache unavailable, continuing without it", zap.Error(err))
		} else {
			deps.Cache = resultCache
			defer resultCache.Close()
		}
	}

	if cfg.History.Enabled {
		store, err := history.Open(&history.Config{
			Driver:          cfg.History.Driver,
			DSN:             cfg.History.DSN,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxLifetime: cfg.History.ConnMaxLifetime,
		}, log.WithComponent("history").Logger)
		if err != nil {
			log.Fatal("Failed to open history store", zap.Error(err))
		}
		deps.History = store
		defer store.Close()
	}

	srv, err := server.New(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	// Log level and rule packs follow the config file without a restart.
	err = config.Watch(func(updated *config.Config) {
		if err := log.SetLevel(updated.Logging.Level); err != nil {
			log.Warn("Ignoring invalid log level", zap.Error(err))
		}
		if err := srv.ReloadRules(updated.Grammar.RulePacks); err != nil {
			log.Error("Failed to reload rule packs, keeping current catalog", zap.Error(err))
		}
	}, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	})
	if err != nil {
		log.Debug("Configuration hot reload disabled", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(addr string) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
}
