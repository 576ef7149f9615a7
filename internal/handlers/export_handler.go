package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/diarize/internal/domains/export"
	"github.com/xpanvictor/diarize/internal/domains/review"
)

// ExportHandler serves the reviewed transcript as a download
type ExportHandler struct {
	reviewService review.Service
}

func NewExportHandler(reviewService review.Service) *ExportHandler {
	return &ExportHandler{reviewService: reviewService}
}

// Download renders the current store contents as plain text.
func (h *ExportHandler) Download(c *gin.Context) {
	body := export.Render(h.reviewService.Utterances())

	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
