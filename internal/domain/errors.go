package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by a transport that was never connected or was closed.
	ErrNotConnected = errors.New("transport not connected")

	// ErrMissingAudioURL marks a job envelope without a filePath.
	ErrMissingAudioURL = errors.New("job has no filePath")

	// ErrPoolStopped is returned when submitting to a stopped worker pool.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Kind classifies failures for logging and result construction.
type Kind string

const (
	KindDecode    Kind = "decode"
	KindFetch     Kind = "fetch"
	KindEngine    Kind = "engine"
	KindUnknown   Kind = "unknown"
	KindTransport Kind = "transport"
)

// DecodeError reports an inbound message that is not a well-formed job envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("malformed job message: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// FetchError reports that the source audio could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("audio download failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// EngineError reports a transcription engine failure.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return fmt.Sprintf("transcription failed: %v", e.Err) }
func (e *EngineError) Unwrap() error { return e.Err }

// UnknownError wraps any other failure raised while processing a job.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown error during audio processing: %v", e.Err)
}
func (e *UnknownError) Unwrap() error { return e.Err }

// TransportError reports a failure at the broker boundary.
type TransportError struct {
	Op  string // connect, publish, subscribe, unsubscribe, health
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// KindOf returns the taxonomy kind of err. Unclassified errors are KindUnknown.
func KindOf(err error) Kind {
	var (
		decodeErr    *DecodeError
		fetchErr     *FetchError
		engineErr    *EngineError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &decodeErr), errors.Is(err, ErrMissingAudioURL):
		return KindDecode
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &engineErr):
		return KindEngine
	case errors.As(err, &transportErr), errors.Is(err, ErrNotConnected):
		return KindTransport
	default:
		return KindUnknown
	}
}
