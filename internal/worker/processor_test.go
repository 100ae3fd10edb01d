package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dontdude/goscribe/internal/domain"
)

type fakeFetcher struct {
	fetch func(ctx context.Context, url, dir string) (string, error)
}

func (f fakeFetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	return f.fetch(ctx, url, dir)
}

type fakeEngine struct {
	transcribe func(ctx context.Context, path string, opts domain.TranscribeOptions) ([]domain.Segment, error)
}

func (f fakeEngine) Transcribe(ctx context.Context, path string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
	return f.transcribe(ctx, path, opts)
}

type upperNorm struct{}

func (upperNorm) Normalize(s string) (string, error) { return strings.ToUpper(s), nil }

func writingFetcher() fakeFetcher {
	return fakeFetcher{fetch: func(_ context.Context, _ string, dir string) (string, error) {
		path := filepath.Join(dir, "audio_file.wav")
		return path, os.WriteFile(path, []byte("RIFF"), 0o644)
	}}
}

func TestProcessSuccess(t *testing.T) {
	var seenDir string
	engine := fakeEngine{transcribe: func(_ context.Context, path string, _ domain.TranscribeOptions) ([]domain.Segment, error) {
		seenDir = filepath.Dir(path)
		return []domain.Segment{{Text: "hello"}, {Speaker: "SPEAKER_01", Text: "world"}}, nil
	}}
	tmp := t.TempDir()
	p := NewProcessor(writingFetcher(), engine, upperNorm{}, domain.FormatText, tmp)

	res := p.Process(context.Background(), domain.Job{AudioID: "a1", AudioURL: "http://m/b/o.wav"})
	if res.Status != domain.StatusSuccess {
		t.Fatalf("status = %s, text = %q", res.Status, res.Text)
	}
	if res.Text != "HELLO\n[SPEAKER_01] WORLD" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.EndTime.Before(res.StartTime) {
		t.Fatalf("end %v before start %v", res.EndTime, res.StartTime)
	}
	if !strings.HasPrefix(filepath.Base(seenDir), "asr_") {
		t.Fatalf("scratch dir = %q, want asr_ prefix", seenDir)
	}
	if _, err := os.Stat(seenDir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir %q still exists", seenDir)
	}
}

func TestProcessFetchFailure(t *testing.T) {
	fetcher := fakeFetcher{fetch: func(context.Context, string, string) (string, error) {
		return "", errors.New("bucket gone")
	}}
	engine := fakeEngine{transcribe: func(context.Context, string, domain.TranscribeOptions) ([]domain.Segment, error) {
		t.Fatal("engine must not run after a failed fetch")
		return nil, nil
	}}
	p := NewProcessor(fetcher, engine, upperNorm{}, domain.FormatText, t.TempDir())

	res := p.Process(context.Background(), domain.Job{AudioID: "a1", AudioURL: "http://m/b/o.wav"})
	if res.Status != domain.StatusError || res.AudioID != "a1" {
		t.Fatalf("result = %+v", res)
	}
	if res.Text != "audio download failed: bucket gone" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestProcessEngineFailure(t *testing.T) {
	engine := fakeEngine{transcribe: func(context.Context, string, domain.TranscribeOptions) ([]domain.Segment, error) {
		return nil, errors.New("model load failed")
	}}
	tmp := t.TempDir()
	p := NewProcessor(writingFetcher(), engine, upperNorm{}, domain.FormatText, tmp)

	res := p.Process(context.Background(), domain.Job{AudioID: "a1", AudioURL: "u"})
	if res.Status != domain.StatusError || res.Text != "transcription failed: model load failed" {
		t.Fatalf("result = %+v", res)
	}
	assertEmpty(t, tmp)
}

type failingNorm struct{}

func (failingNorm) Normalize(string) (string, error) { return "", errors.New("bad utf-8") }

func TestProcessNormalizeFailureIsUnknownError(t *testing.T) {
	engine := fakeEngine{transcribe: func(context.Context, string, domain.TranscribeOptions) ([]domain.Segment, error) {
		return []domain.Segment{{Text: "你好"}}, nil
	}}
	tmp := t.TempDir()
	p := NewProcessor(writingFetcher(), engine, failingNorm{}, domain.FormatText, tmp)

	res := p.Process(context.Background(), domain.Job{AudioID: "a1", AudioURL: "u"})
	if res.Status != domain.StatusError || res.AudioID != "a1" {
		t.Fatalf("result = %+v", res)
	}
	want := "unknown error during audio processing: failed to normalize segment 0: bad utf-8"
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	assertEmpty(t, tmp)
}

// assertEmpty fails when any scratch directory survived under dir.
func assertEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch dirs left behind: %d", len(entries))
	}
}

func TestProcessPanicBecomesUnknownError(t *testing.T) {
	tmp := t.TempDir()
	engine := fakeEngine{transcribe: func(context.Context, string, domain.TranscribeOptions) ([]domain.Segment, error) {
		panic("cuda out of memory")
	}}
	p := NewProcessor(writingFetcher(), engine, upperNorm{}, domain.FormatText, tmp)

	res := p.Process(context.Background(), domain.Job{AudioID: "a1", AudioURL: "u"})
	if res.Status != domain.StatusError {
		t.Fatalf("status = %s", res.Status)
	}
	if !strings.HasPrefix(res.Text, "unknown error during audio processing") {
		t.Fatalf("text = %q", res.Text)
	}
	assertEmpty(t, tmp)
}

func TestProcessSpeakerHints(t *testing.T) {
	cases := []struct {
		min, max  int
		wantRange bool
	}{
		{0, 0, false},
		{2, 0, false},
		{0, 3, false},
		{4, 2, false},
		{2, 2, true},
		{2, 5, true},
	}
	for _, c := range cases {
		var got domain.TranscribeOptions
		engine := fakeEngine{transcribe: func(_ context.Context, _ string, opts domain.TranscribeOptions) ([]domain.Segment, error) {
			got = opts
			return nil, nil
		}}
		p := NewProcessor(writingFetcher(), engine, upperNorm{}, domain.FormatText, t.TempDir())
		res := p.Process(context.Background(), domain.Job{AudioID: "a", AudioURL: "u", MinSpeakers: c.min, MaxSpeakers: c.max})
		if res.Status != domain.StatusSuccess {
			t.Fatalf("min=%d max=%d: status = %s (%s)", c.min, c.max, res.Status, res.Text)
		}
		if got.HasSpeakerRange() != c.wantRange {
			t.Fatalf("min=%d max=%d: range = %+v, want range %v", c.min, c.max, got, c.wantRange)
		}
		if c.wantRange && (got.MinSpeakers != c.min || got.MaxSpeakers != c.max) {
			t.Fatalf("range = %+v, want %d..%d", got, c.min, c.max)
		}
	}
}
