package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dontdude/goscribe/internal/config"
	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/internal/platform/queue"
	"github.com/dontdude/goscribe/internal/platform/textnorm"
)

type fetchFunc func(ctx context.Context, url, dir string) (string, error)

func (f fetchFunc) Fetch(ctx context.Context, url, dir string) (string, error) {
	return f(ctx, url, dir)
}

type engineFunc func(ctx context.Context, path string, opts domain.TranscribeOptions) ([]domain.Segment, error)

func (f engineFunc) Transcribe(ctx context.Context, path string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
	return f(ctx, path, opts)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("GOSCRIBE_BROKER_DRIVER", "memory")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Broker.ReconnectBackoff = 10 * time.Millisecond
	cfg.Broker.HealthInterval = 0
	cfg.Pool.MaxWorkers = 2
	cfg.Pool.QueueDepth = 2
	cfg.Pool.ShutdownGrace = time.Second
	cfg.Pool.TempDir = t.TempDir()
	return cfg
}

// runPipeline starts a forwarder over an in-memory broker, publishes body and
// returns the first Result seen on the send topic.
func runPipeline(t *testing.T, fetcher domain.BlobFetcher, engine domain.Engine, body string) domain.Result {
	t.Helper()
	cfg := testConfig(t)
	tr := queue.NewMemoryTransport()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tr.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	results, err := tr.Subscribe(ctx, cfg.Broker.SendTopic, "test", "")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	f := Assemble(cfg, tr, fetcher, engine, textnorm.Passthrough{})
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- f.Run(runCtx) }()
	defer func() {
		stop()
		<-done
	}()

	if _, err := tr.Publish(ctx, cfg.Broker.Topic, []byte(body), ""); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case m := <-results:
		if m.Tag != domain.ResultTag {
			t.Fatalf("result tag = %q", m.Tag)
		}
		res, err := domain.DecodeResult(m.Body)
		if err != nil {
			t.Fatalf("DecodeResult() error = %v", err)
		}
		return res
	case <-ctx.Done():
		t.Fatal("no result published")
	}
	return domain.Result{}
}

func writeAudio(_ context.Context, _ string, dir string) (string, error) {
	path := filepath.Join(dir, "audio_file.wav")
	return path, os.WriteFile(path, []byte("RIFF"), 0o644)
}

func TestPipelineSuccess(t *testing.T) {
	engine := engineFunc(func(_ context.Context, _ string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
		if opts.HasSpeakerRange() {
			t.Errorf("opts = %+v, want unknown speaker count", opts)
		}
		return []domain.Segment{{Text: "你好"}}, nil
	})
	res := runPipeline(t, fetchFunc(writeAudio), engine,
		`{"id":"a1","filePath":"http://store/bucket/x.wav","minSpeakers":0,"maxSpeakers":0}`)

	if res.AudioID != "a1" || res.Status != domain.StatusSuccess || res.Text != "你好" {
		t.Fatalf("result = %+v", res)
	}
}

func TestPipelineFetchFailure(t *testing.T) {
	fetcher := fetchFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("NoSuchBucket: bucket does not exist")
	})
	engine := engineFunc(func(context.Context, string, domain.TranscribeOptions) ([]domain.Segment, error) {
		t.Error("engine called after failed fetch")
		return nil, nil
	})
	res := runPipeline(t, fetcher, engine, `{"id":"a1","filePath":"http://store/bucket/x.wav"}`)

	if res.AudioID != "a1" || res.Status != domain.StatusError {
		t.Fatalf("result = %+v", res)
	}
	if res.Text != "audio download failed: NoSuchBucket: bucket does not exist" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestPipelineBoundsConcurrentJobs(t *testing.T) {
	const workers, jobs = 5, 20
	cfg := testConfig(t)
	cfg.Pool.MaxWorkers = workers
	cfg.Pool.QueueDepth = workers

	var running, peak atomic.Int64
	engine := engineFunc(func(_ context.Context, _ string, _ domain.TranscribeOptions) ([]domain.Segment, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return []domain.Segment{{Text: "ok"}}, nil
	})

	tr := queue.NewMemoryTransport()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tr.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	results, err := tr.Subscribe(ctx, cfg.Broker.SendTopic, "test", "")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	f := Assemble(cfg, tr, fetchFunc(writeAudio), engine, textnorm.Passthrough{})
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- f.Run(runCtx) }()
	defer func() {
		stop()
		<-done
	}()

	for i := 0; i < jobs; i++ {
		body := fmt.Sprintf(`{"id":"job-%d","filePath":"http://store/bucket/%d.wav"}`, i, i)
		if _, err := tr.Publish(ctx, cfg.Broker.Topic, []byte(body), ""); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	seen := make(map[string]int)
	for len(seen) < jobs {
		select {
		case m := <-results:
			res, err := domain.DecodeResult(m.Body)
			if err != nil {
				t.Fatalf("DecodeResult() error = %v", err)
			}
			if res.Status != domain.StatusSuccess {
				t.Fatalf("result = %+v", res)
			}
			seen[res.AudioID]++
			_ = m.Ack(ctx)
		case <-ctx.Done():
			t.Fatalf("got %d of %d results", len(seen), jobs)
		}
	}

	// Any duplicate would arrive right behind the last result.
	select {
	case m := <-results:
		t.Fatalf("unexpected extra result %s", m.Body)
	case <-time.After(200 * time.Millisecond):
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("%s published %d times", id, n)
		}
	}
	if got := peak.Load(); got > workers {
		t.Fatalf("peak concurrent engine calls = %d, want <= %d", got, workers)
	}
}

func TestNewTransportDrivers(t *testing.T) {
	cfg := testConfig(t)
	for _, driver := range []string{config.DriverRedis, config.DriverRocketMQ, config.DriverGateway, config.DriverMemory} {
		tr, err := NewTransport(cfg.Broker, driver)
		if err != nil || tr == nil {
			t.Fatalf("NewTransport(%q) = %v, %v", driver, tr, err)
		}
	}
	if _, err := NewTransport(cfg.Broker, "kafka"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
