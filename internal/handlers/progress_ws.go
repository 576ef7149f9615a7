package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xpanvictor/diarize/internal/domains/review"
	"github.com/xpanvictor/diarize/pkg/Logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // single-user tool, served same-origin
}

// ProgressHandler streams session events over a WebSocket
type ProgressHandler struct {
	reviewService review.Service
	logger        *Logger.Logger
}

func NewProgressHandler(reviewService review.Service, logger *Logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Stream upgrades the connection, replays retained history, then
// forwards live events until either side goes away.
func (h *ProgressHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, events, replay := h.reviewService.Subscribe()
	defer h.reviewService.Unsubscribe(id)

	for _, ev := range replay {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debugf("ws replay write: %v", err)
			return
		}
	}

	// Reader goroutine only notices the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debugf("ws write: %v", err)
				return
			}
		}
	}
}
