// Package stt defines the boundary to the external diarized
// speech-to-text service. Concrete backends live in subpackages.
package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Common errors
var (
	// ErrMissingAPIKey is a configuration problem, raised before any
	// request leaves the process.
	ErrMissingAPIKey = errors.New("transcription api key is not configured")
	// ErrEmptyResult means the service completed but produced no
	// utterances, which the review flow treats as a failure.
	ErrEmptyResult = errors.New("transcription completed with no utterances")
)

// ServiceError carries an explicit failure reported by the service.
// Its message is shown to the user verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcription service error: %s", e.Message)
}

// ProgressFunc receives fractional progress in [0,100]. Engines invoke
// it zero or more times with increasing values; callers own marshaling
// it onto their goroutine.
type ProgressFunc func(percent float64)

// Request is one transcription submission.
type Request struct {
	FileName string
	Audio    io.Reader
}

// Engine submits audio for diarized transcription and blocks until the
// job settles. There is no retry and no partial result.
type Engine interface {
	// Configured reports whether the engine can reach its service at
	// all, without issuing a request. Returns ErrMissingAPIKey when
	// the credential is absent.
	Configured() error
	Transcribe(ctx context.Context, req Request, onProgress ProgressFunc) ([]RawUtterance, error)
}

// RawUtterance is one speaker turn as normalized from the service
// response: a positional id, a label from the fixed seven-speaker
// alphabet, and the transcribed text.
type RawUtterance struct {
	ID      string
	Speaker string
	Text    string
}

const speakerAlphabetSize = 7

// SpeakerLabel folds an arbitrary service speaker index into the fixed
// alphabet "Speaker A".."Speaker G".
func SpeakerLabel(index int) string {
	if index < 0 {
		index = -index
	}
	return "Speaker " + string(rune('A'+index%speakerAlphabetSize))
}
