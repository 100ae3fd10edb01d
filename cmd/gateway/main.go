package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dontdude/goscribe/internal/app"
	"github.com/dontdude/goscribe/internal/config"
	"github.com/dontdude/goscribe/internal/platform/gateway"
	"github.com/dontdude/goscribe/internal/platform/web"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect the backend broker
	backend, err := app.NewTransport(cfg.Broker, cfg.Gateway.Backend)
	if err != nil {
		slog.Error("Failed to build backend transport", "error", err)
		os.Exit(1)
	}
	if err := backend.Connect(ctx); err != nil {
		slog.Error("Failed to connect backend", "backend", cfg.Gateway.Backend, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	// 3. gRPC surface with per-peer rate limiting
	limiter := web.NewRateLimiter(ctx, cfg.Gateway.Rate, cfg.Gateway.Burst)
	srv := gateway.NewServer(backend)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(gateway.RateLimitInterceptor(limiter)))
	srv.Register(grpcServer)
	go srv.WatchHealth(ctx, cfg.Broker.HealthInterval)

	lis, err := net.Listen("tcp", cfg.Gateway.Listen)
	if err != nil {
		slog.Error("Failed to listen", "addr", cfg.Gateway.Listen, "error", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("gRPC gateway listening", "addr", cfg.Gateway.Listen, "backend", cfg.Gateway.Backend)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server failed", "error", err)
			stop()
		}
	}()

	// 4. HTTP surface: health, stats and result watch
	hub := web.NewHub(cfg.Broker.ResultTag, cfg.Broker.ReconnectBackoff)
	go hub.Run(ctx, backend, cfg.Broker.SendTopic, "gateway-watch")

	gin.SetMode(gin.ReleaseMode)
	router := web.NewRouter(
		srv.Health,
		func() any { return srv.Stats() },
		hub, limiter,
	)
	httpServer := &http.Server{Addr: cfg.Gateway.HTTPListen, Handler: router}
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Gateway.HTTPListen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gateway...")

	srv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	slog.Info("Gateway stopped", "stats", srv.Stats())
}
