// Package app builds the forwarder from configuration and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dontdude/goscribe/internal/config"
	"github.com/dontdude/goscribe/internal/consumer"
	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/internal/platform/docker"
	"github.com/dontdude/goscribe/internal/platform/gateway"
	"github.com/dontdude/goscribe/internal/platform/openai"
	"github.com/dontdude/goscribe/internal/platform/queue"
	"github.com/dontdude/goscribe/internal/platform/storage"
	"github.com/dontdude/goscribe/internal/platform/textnorm"
	"github.com/dontdude/goscribe/internal/publish"
	"github.com/dontdude/goscribe/internal/worker"
)

// NewTransport builds the transport for driver from the broker section.
func NewTransport(cfg config.BrokerConfig, driver string) (domain.Transport, error) {
	switch driver {
	case config.DriverRedis:
		return queue.NewRedisTransport(cfg.RedisAddr, queue.RedisOptions{
			ClaimInterval: cfg.ClaimInterval,
			ClaimMinIdle:  cfg.ClaimMinIdle,
			MaxDeliveries: cfg.MaxDeliveries,
			MaxLen:        cfg.MaxLen,
		}), nil
	case config.DriverRocketMQ:
		return queue.NewRocketMQTransport(queue.RocketMQOptions{
			NameServer:    cfg.NameServer,
			ProducerGroup: cfg.ProducerGroup,
		}), nil
	case config.DriverGateway:
		return gateway.NewClient(cfg.GRPCServer, cfg.ReconnectBackoff), nil
	case config.DriverMemory:
		return queue.NewMemoryTransport(), nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", driver)
	}
}

// NewEngine builds the transcription engine selected by cfg.Driver.
func NewEngine(ctx context.Context, cfg config.EngineConfig) (domain.Engine, error) {
	switch cfg.Driver {
	case config.EngineDocker:
		return docker.NewEngine(ctx, docker.Options{
			Image:       cfg.Image,
			Model:       cfg.ModelType,
			Device:      cfg.Device,
			ComputeType: cfg.ComputeType,
			BatchSize:   cfg.BatchSize,
			Language:    cfg.Language,
			HFToken:     cfg.HFToken,
			MemoryMB:    cfg.MemoryMB,
		})
	case config.EngineOpenAI:
		return openai.NewEngine(openai.Options{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.ModelType,
			Language: cfg.Language,
		})
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Driver)
	}
}

// Forwarder is the orchestrator process: consumer, pool and publisher over one transport.
type Forwarder struct {
	transport domain.Transport
	pool      *worker.Pool
	consumer  *consumer.Consumer
	backoff   time.Duration
	grace     time.Duration
}

// NewForwarder builds every collaborator from cfg.
func NewForwarder(ctx context.Context, cfg config.Config) (*Forwarder, error) {
	t, err := NewTransport(cfg.Broker, cfg.Broker.Driver)
	if err != nil {
		return nil, err
	}
	fetcher, err := storage.NewMinioFetcher(storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
	})
	if err != nil {
		return nil, err
	}
	engine, err := NewEngine(ctx, cfg.Engine)
	if err != nil {
		return nil, err
	}
	norm, err := textnorm.NewSimplifier()
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, t, fetcher, engine, norm), nil
}

// Assemble wires the pipeline around already-built collaborators.
func Assemble(cfg config.Config, t domain.Transport, fetcher domain.BlobFetcher, engine domain.Engine, norm domain.Normalizer) *Forwarder {
	pool := worker.NewPool(cfg.Pool.MaxWorkers, cfg.Pool.QueueDepth)
	proc := worker.NewProcessor(fetcher, engine, norm, cfg.Result.Format, cfg.Pool.TempDir)
	pub := publish.New(t, publish.Options{
		Topic:   cfg.Broker.SendTopic,
		Tag:     cfg.Broker.ResultTag,
		Retries: cfg.Broker.PublishRetries,
		Timeout: cfg.Broker.PublishTimeout,
		Backoff: cfg.Broker.ReconnectBackoff,
	})
	c := consumer.New(t, pool, proc, pub, consumer.Options{
		Topic:          cfg.Broker.Topic,
		Group:          cfg.Broker.ConsumerGroup,
		Tags:           cfg.Broker.Tag,
		Backoff:        cfg.Broker.ReconnectBackoff,
		HealthInterval: cfg.Broker.HealthInterval,
	})
	return &Forwarder{
		transport: t,
		pool:      pool,
		consumer:  c,
		backoff:   cfg.Broker.ReconnectBackoff,
		grace:     cfg.Pool.ShutdownGrace,
	}
}

// Run connects, consumes until ctx is done, then drains the pool within the
// shutdown grace and closes the transport.
func (f *Forwarder) Run(ctx context.Context) error {
	if err := f.connect(ctx); err != nil {
		return err
	}
	f.pool.Start()

	runErr := f.consumer.Run(ctx)

	graceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.grace)
	defer cancel()
	if err := f.pool.Stop(graceCtx); err != nil {
		slog.Warn("Shutdown grace exceeded", "error", err)
	}
	if err := f.transport.Close(); err != nil {
		slog.Warn("Failed to close transport", "error", err)
	}
	return runErr
}

// connect retries with the reconnect backoff until it succeeds or ctx is done.
func (f *Forwarder) connect(ctx context.Context) error {
	for {
		err := f.transport.Connect(ctx)
		if err == nil {
			return nil
		}
		slog.Error("Transport connect failed", "error", err, "backoff", f.backoff)
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect transport: %w", err)
		case <-time.After(f.backoff):
		}
	}
}
