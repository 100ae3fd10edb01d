package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestResultEncodeWireFields(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	end := start.Add(90 * time.Second)
	data, err := NewSuccess("a1", "你好 <b>&", start, end).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !strings.Contains(string(data), `"result_text":"你好 <b>&"`) {
		t.Fatalf("expected raw UTF-8 without HTML escaping, got %s", data)
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]string{
		"audioId":     "a1",
		"result_text": "你好 <b>&",
		"status":      "success",
		"startTime":   "2025-03-01 09:30:00",
		"endTime":     "2025-03-01 09:31:30",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Fatalf("%s = %q, want %q", k, fields[k], v)
		}
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want exactly %d keys", fields, len(want))
	}
}

func TestResultRoundTrip(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	in := NewFailure("42", &FetchError{URL: "http://x", Err: errors.New("bucket gone")}, start, start.Add(time.Second))

	data, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out, err := DecodeResult(data)
	if err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	if out.AudioID != in.AudioID || out.Status != in.Status || out.Text != in.Text {
		t.Fatalf("result = %+v, want %+v", out, in)
	}
	if !out.StartTime.Equal(in.StartTime) || !out.EndTime.Equal(in.EndTime) {
		t.Fatalf("times = %v..%v, want %v..%v", out.StartTime, out.EndTime, in.StartTime, in.EndTime)
	}
	if out.Text != "audio download failed: bucket gone" {
		t.Fatalf("text = %q", out.Text)
	}
}

func TestFormatSegmentsText(t *testing.T) {
	got, err := FormatSegments([]Segment{
		{Start: 0, End: 1, Text: " 你好 "},
		{Start: 1, End: 2, Text: "   "},
		{Start: 2, End: 3, Speaker: "SPEAKER_01", Text: "世界"},
	}, FormatText)
	if err != nil {
		t.Fatalf("FormatSegments() error = %v", err)
	}
	if got != "你好\n[SPEAKER_01] 世界" {
		t.Fatalf("text = %q", got)
	}
}

func TestFormatSegmentsJSON(t *testing.T) {
	got, err := FormatSegments([]Segment{{Start: 0.5, End: 1.25, Text: "你好"}}, FormatJSON)
	if err != nil {
		t.Fatalf("FormatSegments() error = %v", err)
	}
	if got != `[{"start":0.5,"end":1.25,"text":"你好"}]` {
		t.Fatalf("json = %s", got)
	}

	empty, err := FormatSegments(nil, FormatJSON)
	if err != nil || empty != "[]" {
		t.Fatalf("empty = %q, %v", empty, err)
	}
}

func TestFormatSegmentsUnknownFormat(t *testing.T) {
	if _, err := FormatSegments(nil, "srt"); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestKindOf(t *testing.T) {
	cases := map[Kind]error{
		KindDecode:    &DecodeError{Err: errors.New("x")},
		KindFetch:     &FetchError{Err: errors.New("x")},
		KindEngine:    &EngineError{Err: errors.New("x")},
		KindTransport: &TransportError{Op: "publish", Err: ErrNotConnected},
		KindUnknown:   errors.New("boom"),
	}
	for want, err := range cases {
		if got := KindOf(err); got != want {
			t.Fatalf("KindOf(%v) = %s, want %s", err, got, want)
		}
	}
}
