package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/internal/upload"
	"github.com/xpanvictor/diarize/pkg/Logger"
	"github.com/xpanvictor/diarize/pkg/stt"
)

// TranscriptionHandler handles submission and session inspection
type TranscriptionHandler struct {
	reviewService review.Service
	logger        *Logger.Logger
}

func NewTranscriptionHandler(reviewService review.Service, logger *Logger.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Submit accepts one multipart audio upload and starts a transcription
// job. The job outlives the request; progress is observed elsewhere.
func (h *TranscriptionHandler) Submit(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Expected an 'audio' file field",
			Details: err.Error(),
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorf("open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Could not read upload"})
		return
	}
	defer f.Close()

	snap, err := h.reviewService.Submit(fileHeader.Filename, fileHeader.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "File exceeds the 800 MiB limit"})
		case errors.Is(err, review.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A transcription is already in flight"})
		case errors.Is(err, stt.ErrMissingAPIKey):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Transcription API key is not configured"})
		default:
			h.logger.Errorf("submit error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusAccepted, SessionResponse{Session: snap})
}

// Current reports the active session snapshot.
func (h *TranscriptionHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{Session: h.reviewService.Session()})
}
