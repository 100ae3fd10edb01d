package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dontdude/goscribe/internal/app"
	"github.com/dontdude/goscribe/internal/config"
	"github.com/dontdude/goscribe/internal/domain"
	"github.com/google/uuid"
)

// producer publishes sample transcription jobs to the inbound topic.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	audioURL := flag.String("url", "", "object URL of the audio to transcribe (required)")
	n := flag.Int("n", 1, "number of jobs to publish")
	minSpeakers := flag.Int("min", 0, "minimum speaker hint")
	maxSpeakers := flag.Int("max", 0, "maximum speaker hint")
	tag := flag.String("tag", "", "message tag, defaults to broker.tag")
	flag.Parse()

	// 1. Load config and initialize logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.Log))
	if *audioURL == "" {
		slog.Error("-url is required")
		os.Exit(2)
	}
	if *tag == "" {
		*tag = cfg.Broker.Tag
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 2. Connect the broker (producer mode)
	t, err := app.NewTransport(cfg.Broker, cfg.Broker.Driver)
	if err != nil {
		slog.Error("Failed to build transport", "error", err)
		os.Exit(1)
	}
	if err := t.Connect(ctx); err != nil {
		slog.Error("Failed to connect broker", "error", err)
		os.Exit(1)
	}
	defer t.Close()

	// 3. Publish jobs
	for i := 0; i < *n; i++ {
		job := domain.Job{
			AudioID:     uuid.NewString(),
			AudioURL:    *audioURL,
			MinSpeakers: *minSpeakers,
			MaxSpeakers: *maxSpeakers,
		}
		body, err := domain.EncodeJob(job)
		if err != nil {
			slog.Error("Failed to encode job", "error", err)
			os.Exit(1)
		}

		id, err := t.Publish(ctx, cfg.Broker.Topic, body, *tag)
		if err != nil {
			slog.Error("Failed to publish job", "audioID", job.AudioID, "error", err)
			os.Exit(1)
		}
		slog.Info("Published job", "audioID", job.AudioID, "msgID", id)
	}

	slog.Info("Successfully published jobs", "count", *n, "topic", cfg.Broker.Topic)
}
