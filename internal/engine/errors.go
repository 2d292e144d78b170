package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Per-item failure kinds.
var (
	ErrInvalidReference    = errors.New("invalid video reference")
	ErrNotFound            = errors.New("video not found")
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrNoCaptions          = errors.New("no captions available")
	ErrEmptyTranscript     = errors.New("transcript is empty")
	ErrUnsupportedPayload  = errors.New("unsupported caption payload")
)

// Batch-level failures.
var (
	ErrMissingVideos = errors.New("video list is required")
	ErrBatchTooLarge = errors.New("too many video references")
)

// FetchError is a transport-level failure fetching a page or caption payload.
// StatusCode is 0 when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrorKind returns a short machine-readable name for err's failure kind.
func ErrorKind(err error) string {
	var fe *FetchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoCaptions):
		return "no_captions"
	case errors.Is(err, ErrEmptyTranscript):
		return "empty_transcript"
	case errors.Is(err, ErrMetadataUnavailable):
		return "metadata_unavailable"
	case errors.Is(err, ErrUnsupportedPayload):
		return "unsupported_payload"
	case errors.As(err, &fe):
		return "fetch_error"
	}
	return "internal"
}
