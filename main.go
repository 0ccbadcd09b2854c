package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/konekta/ouvidoria/pkg/config"
	"github.com/konekta/ouvidoria/pkg/db"
	"github.com/konekta/ouvidoria/pkg/utils"
)

// main wires the config, database and webhook server together and runs until
// SIGINT/SIGTERM, then drains in-flight conversations before exiting.
func main() {
	// Initialize logging system
	utils.InitLogger()
	logger := utils.GetLogger()

	if _, err := config.EnsureDefaultConfig(); err != nil {
		logger.Warn("Could not write default config", "error", err)
	}

	cfg, configFile, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("Config loaded", "file", configFile, "db_driver", cfg.DBDriver())

	gdb, err := db.Open(cfg.DBDriver(), cfg.DBDSN())
	if err != nil {
		logger.Error("Failed to open database", "driver", cfg.DBDriver(), "error", err)
		os.Exit(1)
	}

	server, err := NewServer(cfg, gdb)
	if err != nil {
		logger.Error("Failed to set up server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Start(ctx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		server.Shutdown()
		os.Exit(1)
	}

	server.Shutdown()
	logger.Info("Shutdown complete")
}
