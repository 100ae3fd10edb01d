package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
)

// scratchPattern names the per-job temporary directory.
const scratchPattern = "asr_*"

// Processor runs one job end to end: fetch, transcribe, normalize, format.
// It always returns a Result; failures become status=error.
type Processor struct {
	fetcher domain.BlobFetcher
	engine  domain.Engine
	norm    domain.Normalizer
	format  string
	tempDir string

	now func() time.Time
}

// NewProcessor wires the collaborators. An empty tempDir means the OS default.
func NewProcessor(fetcher domain.BlobFetcher, engine domain.Engine, norm domain.Normalizer, format, tempDir string) *Processor {
	return &Processor{
		fetcher: fetcher,
		engine:  engine,
		norm:    norm,
		format:  format,
		tempDir: tempDir,
		now:     time.Now,
	}
}

// Process executes job and builds its Result.
func (p *Processor) Process(ctx context.Context, job domain.Job) (res domain.Result) {
	start := p.now()
	defer func() {
		if r := recover(); r != nil {
			err := &domain.UnknownError{Err: fmt.Errorf("panic: %v", r)}
			slog.Error("Job panicked", "audioID", job.AudioID, "error", err)
			res = domain.NewFailure(job.AudioID, err, start, p.now())
		}
	}()

	slog.Info("Processing job", "audioID", job.AudioID, "url", job.AudioURL)
	text, err := p.run(ctx, job)
	end := p.now()
	if err != nil {
		slog.Error("Job failed", "audioID", job.AudioID, "kind", domain.KindOf(err), "error", err)
		return domain.NewFailure(job.AudioID, err, start, end)
	}

	slog.Info("Job finished", "audioID", job.AudioID, "took", end.Sub(start))
	return domain.NewSuccess(job.AudioID, text, start, end)
}

func (p *Processor) run(ctx context.Context, job domain.Job) (string, error) {
	dir, err := os.MkdirTemp(p.tempDir, scratchPattern)
	if err != nil {
		return "", &domain.UnknownError{Err: fmt.Errorf("failed to create scratch dir: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("Failed to clean up scratch dir", "dir", dir, "error", err)
		}
	}()

	path, err := p.fetcher.Fetch(ctx, job.AudioURL, dir)
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return "", err
		}
		return "", &domain.FetchError{URL: job.AudioURL, Err: err}
	}

	segments, err := p.engine.Transcribe(ctx, path, job.Options())
	if err != nil {
		var ee *domain.EngineError
		if errors.As(err, &ee) {
			return "", err
		}
		return "", &domain.EngineError{Err: err}
	}

	for i := range segments {
		text, err := p.norm.Normalize(segments[i].Text)
		if err != nil {
			return "", &domain.UnknownError{Err: fmt.Errorf("failed to normalize segment %d: %w", i, err)}
		}
		segments[i].Text = text
	}

	text, err := domain.FormatSegments(segments, p.format)
	if err != nil {
		return "", &domain.UnknownError{Err: err}
	}
	return text, nil
}
