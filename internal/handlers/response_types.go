package handlers

import (
	"github.com/xpanvictor/diarize/internal/domains/session"
	"github.com/xpanvictor/diarize/internal/domains/transcript"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty"`
}

// SessionResponse wraps the transcription session snapshot
type SessionResponse struct {
	Session session.Snapshot `json:"session"`
}

// UtteranceListResponse carries the full ordered sequence
type UtteranceListResponse struct {
	Utterances []transcript.Utterance `json:"utterances"`
}

// InsertResponse carries the freshly inserted entry plus the updated sequence
type InsertResponse struct {
	Inserted   transcript.Utterance   `json:"inserted"`
	Utterances []transcript.Utterance `json:"utterances"`
}

// InsertRequest names the position to insert after
type InsertRequest struct {
	AfterIndex *int `json:"afterIndex" binding:"required"`
}

// SetSpeakerRequest reassigns an utterance to one of the fixed labels
type SetSpeakerRequest struct {
	Speaker transcript.Speaker `json:"speaker" binding:"required" example:"Speaker B"`
}

// DraftRequest carries the in-progress edit buffer
type DraftRequest struct {
	Text *string `json:"text" binding:"required"`
}
