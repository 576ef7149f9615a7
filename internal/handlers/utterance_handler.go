package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/domains/editor"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/internal/domains/transcript"
	"github.com/xpanvictor/diarize/pkg/Logger"
)

// UtteranceHandler exposes the editable utterance collection
type UtteranceHandler struct {
	reviewService review.Service
	logger        *Logger.Logger
}

func NewUtteranceHandler(reviewService review.Service, logger *Logger.Logger) *UtteranceHandler {
	return &UtteranceHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// List returns the ordered sequence.
func (h *UtteranceHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, UtteranceListResponse{Utterances: h.reviewService.Utterances()})
}

// Insert adds a fresh empty utterance after the named index.
func (h *UtteranceHandler) Insert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: err.Error()})
		return
	}

	entry, utts, err := h.reviewService.InsertAfter(*req.AfterIndex)
	if err != nil {
		if errors.Is(err, transcript.ErrIndexOutOfRange) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Index out of range"})
			return
		}
		h.logger.Errorf("insert error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, InsertResponse{Inserted: entry, Utterances: utts})
}

// SetSpeaker reassigns one entry to another fixed label.
func (h *UtteranceHandler) SetSpeaker(c *gin.Context) {
	var req SetSpeakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: err.Error()})
		return
	}

	utts, err := h.reviewService.SetSpeaker(c.Param("id"), req.Speaker)
	if err != nil {
		if errors.Is(err, transcript.ErrInvalidSpeaker) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Speaker must be one of the fixed labels"})
			return
		}
		h.logger.Errorf("set speaker error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, UtteranceListResponse{Utterances: utts})
}

// BeginEdit opens an edit session on one entry. Any uncommitted draft
// on a previous target is discarded, matching the last-edit-wins UI.
func (h *UtteranceHandler) BeginEdit(c *gin.Context) {
	if err := h.reviewService.BeginEdit(c.Param("id")); err != nil {
		if errors.Is(err, editor.ErrUnknownUtterance) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Utterance not found"})
			return
		}
		h.logger.Errorf("begin edit error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateDraft replaces the in-progress buffer; the commit lands on its
// own once the user pauses.
func (h *UtteranceHandler) UpdateDraft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: err.Error()})
		return
	}

	if err := h.reviewService.UpdateDraft(*req.Text); err != nil {
		if errors.Is(err, editor.ErrNoActiveEdit) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "No edit in progress"})
			return
		}
		h.logger.Errorf("update draft error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
