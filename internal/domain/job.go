package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Job represents one transcription request.
// It is built by DecodeJob and never mutated afterwards.
type Job struct {
	AudioID     string `json:"id"`
	AudioURL    string `json:"filePath"`
	MinSpeakers int    `json:"minSpeakers"`
	MaxSpeakers int    `json:"maxSpeakers"`

	// MessageID is the broker id of the message that carried the job.
	MessageID string `json:"-"`
}

// Options returns the diarization hints to pass to the engine.
// A range that is incomplete or inverted is reported as unknown (both zero).
func (j Job) Options() TranscribeOptions {
	if j.MinSpeakers > 0 && j.MaxSpeakers > 0 && j.MinSpeakers <= j.MaxSpeakers {
		return TranscribeOptions{MinSpeakers: j.MinSpeakers, MaxSpeakers: j.MaxSpeakers}
	}
	return TranscribeOptions{}
}

// jobEnvelope is the inbound wire form. The id is kept raw because upstream
// producers send it either as a string or as a number.
type jobEnvelope struct {
	ID          json.RawMessage `json:"id"`
	FilePath    string          `json:"filePath"`
	MinSpeakers *int            `json:"minSpeakers"`
	MaxSpeakers *int            `json:"maxSpeakers"`
}

// DecodeJob parses a job message body.
// It returns a *DecodeError for malformed input and ErrMissingAudioURL when the
// envelope is well-formed but carries no filePath.
func DecodeJob(body []byte) (Job, error) {
	var env jobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Job{}, &DecodeError{Err: err}
	}

	id, err := decodeID(env.ID)
	if err != nil {
		return Job{}, &DecodeError{Err: err}
	}

	job := Job{
		AudioID:     id,
		AudioURL:    strings.TrimSpace(env.FilePath),
		MinSpeakers: nonNegative(env.MinSpeakers),
		MaxSpeakers: nonNegative(env.MaxSpeakers),
	}
	if job.AudioURL == "" {
		return job, ErrMissingAudioURL
	}
	return job, nil
}

// EncodeJob renders job in the inbound wire form.
func EncodeJob(job Job) ([]byte, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return data, nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or a number: %w", err)
	}
	return n.String(), nil
}

func nonNegative(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
