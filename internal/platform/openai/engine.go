package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/sashabaranov/go-openai"
)

// Options configures the Whisper API engine.
type Options struct {
	APIKey string
	// BaseURL overrides the API root, e.g. for a self-hosted compatible server.
	BaseURL  string
	Model    string
	Language string
}

// Engine transcribes through the OpenAI audio API. The API does not diarize,
// so speaker hints are ignored and segments carry no speaker label.
type Engine struct {
	client *openai.Client
	model  string
	lang   string
}

var _ domain.Engine = (*Engine)(nil)

// NewEngine builds the API client.
func NewEngine(opts Options) (*Engine, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai engine: api key is required")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &Engine{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName(opts.Model),
		lang:   opts.Language,
	}, nil
}

// modelName keeps API model ids and maps local WhisperX model sizes to whisper-1.
func modelName(m string) string {
	if strings.HasPrefix(m, "whisper-") || strings.Contains(m, "transcribe") {
		return m
	}
	return openai.Whisper1
}

func (e *Engine) Transcribe(ctx context.Context, audioPath string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
	if opts.HasSpeakerRange() {
		slog.Debug("Speaker hints ignored by openai engine", "min", opts.MinSpeakers, "max", opts.MaxSpeakers)
	}

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: e.lang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription: %w", err)
	}

	segments := make([]domain.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, domain.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		segments = append(segments, domain.Segment{Start: 0, End: resp.Duration, Text: resp.Text})
	}
	return segments, nil
}
