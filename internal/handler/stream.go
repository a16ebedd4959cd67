package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradebridge/internal/stream"
)

// StreamHandler upgrades dashboard clients to the live event websocket.
type StreamHandler struct {
	Hub    *stream.Hub
	Logger *zap.Logger
}

func (h *StreamHandler) Register(r *gin.Engine) {
	r.GET("/ws/events", h.events)
}

func (h *StreamHandler) events(c *gin.Context) {
	if err := h.Hub.Serve(c.Writer, c.Request); err != nil && h.Logger != nil {
		h.Logger.Debug("event stream closed", zap.Error(err))
	}
}
