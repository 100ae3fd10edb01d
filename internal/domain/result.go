package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the wall-clock format of startTime and endTime on the wire.
const TimeLayout = "2006-01-02 15:04:05"

// ResultTag is the broker tag attached to every result message.
const ResultTag = "tag_asr_transfer_result"

// Status is the terminal state of a job.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Segment is one timestamped utterance produced by the engine.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

// Result is the outcome envelope for one job.
type Result struct {
	AudioID   string
	Status    Status
	Text      string
	StartTime time.Time
	EndTime   time.Time
}

// NewSuccess builds a success result carrying the transcript text.
func NewSuccess(audioID, text string, start, end time.Time) Result {
	return Result{AudioID: audioID, Status: StatusSuccess, Text: text, StartTime: start, EndTime: end}
}

// NewFailure builds an error result whose text is the human-readable failure.
func NewFailure(audioID string, err error, start, end time.Time) Result {
	return Result{AudioID: audioID, Status: StatusError, Text: err.Error(), StartTime: start, EndTime: end}
}

type resultEnvelope struct {
	AudioID    string `json:"audioId"`
	ResultText string `json:"result_text"`
	Status     Status `json:"status"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// Encode renders the result in the outbound wire form.
// Text is written as raw UTF-8; nothing is HTML-escaped.
func (r Result) Encode() ([]byte, error) {
	env := resultEnvelope{
		AudioID:    r.AudioID,
		ResultText: r.Text,
		Status:     r.Status,
		StartTime:  r.StartTime.Format(TimeLayout),
		EndTime:    r.EndTime.Format(TimeLayout),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeResult parses an outbound result message. Timestamps are read in local time.
func DecodeResult(body []byte) (Result, error) {
	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	r := Result{AudioID: env.AudioID, Status: env.Status, Text: env.ResultText}
	var err error
	if env.StartTime != "" {
		if r.StartTime, err = time.ParseInLocation(TimeLayout, env.StartTime, time.Local); err != nil {
			return Result{}, fmt.Errorf("invalid startTime: %w", err)
		}
	}
	if env.EndTime != "" {
		if r.EndTime, err = time.ParseInLocation(TimeLayout, env.EndTime, time.Local); err != nil {
			return Result{}, fmt.Errorf("invalid endTime: %w", err)
		}
	}
	return r, nil
}

// Result text formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// FormatSegments serializes segments into result text.
// FormatText joins trimmed texts line by line, prefixing "[speaker] " when labelled.
// FormatJSON emits the segment list as a JSON array.
func FormatSegments(segments []Segment, format string) (string, error) {
	switch format {
	case "", FormatText:
		lines := make([]string, 0, len(segments))
		for _, seg := range segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			if seg.Speaker != "" {
				text = "[" + seg.Speaker + "] " + text
			}
			lines = append(lines, text)
		}
		return strings.Join(lines, "\n"), nil
	case FormatJSON:
		if segments == nil {
			segments = []Segment{}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(segments); err != nil {
			return "", fmt.Errorf("failed to marshal segments: %w", err)
		}
		return strings.TrimRight(buf.String(), "\n"), nil
	default:
		return "", fmt.Errorf("unknown result format %q", format)
	}
}
