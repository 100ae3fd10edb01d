package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dontdude/goscribe/internal/app"
	"github.com/dontdude/goscribe/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config and initialize logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.Log))
	slog.Info("Starting goscribe forwarder...",
		"driver", cfg.Broker.Driver, "topic", cfg.Broker.Topic, "engine", cfg.Engine.Driver, "workers", cfg.Pool.MaxWorkers)

	// 2. Stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Build the pipeline
	f, err := app.NewForwarder(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize forwarder", "error", err)
		os.Exit(1)
	}

	// 4. Run until shutdown
	if err := f.Run(ctx); err != nil {
		slog.Error("Forwarder stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Forwarder stopped")
}
