package domain

import "context"

// BlobFetcher materializes a storage-referenced file inside dir.
// The caller owns dir and everything written into it.
type BlobFetcher interface {
	Fetch(ctx context.Context, url string, dir string) (string, error)
}

// TranscribeOptions carries diarization hints. Zero values mean "unknown".
type TranscribeOptions struct {
	MinSpeakers int
	MaxSpeakers int
}

// HasSpeakerRange reports whether a speaker-count constraint should be applied.
func (o TranscribeOptions) HasSpeakerRange() bool {
	return o.MinSpeakers > 0 && o.MaxSpeakers > 0
}

// Engine turns a local audio file into ordered, speaker-tagged segments.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) ([]Segment, error)
}

// Normalizer rewrites segment text into its normal form. Normalize must be idempotent.
type Normalizer interface {
	Normalize(text string) (string, error)
}
