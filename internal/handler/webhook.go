package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradebridge/internal/engine"
	"tradebridge/internal/signal"
)

// WebhookHandler ingests the two inbound signal shapes: a generic JSON body
// and the action-specific path variant.
type WebhookHandler struct {
	Processor  *engine.Processor
	Normalizer *signal.Normalizer
	Logger     *zap.Logger
}

func (h *WebhookHandler) Register(r *gin.Engine) {
	r.POST("/webhook", h.generic)
	r.POST("/webhook/:strategy_id/:action", h.action)
}

func (h *WebhookHandler) generic(c *gin.Context) {
	var p signal.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		Detail(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	sig, err := h.Normalizer.FromPayload(p, signal.OriginAutomated)
	if err != nil {
		h.normalizeError(c, err)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("webhook received",
			zap.String("signal_id", sig.ID),
			zap.String("strategy", sig.StrategyID),
			zap.String("action", sig.Action),
		)
	}
	h.process(c, sig)
}

func (h *WebhookHandler) action(c *gin.Context) {
	strategyID := strings.TrimSpace(c.Param("strategy_id"))
	actionHint := c.Param("action")

	// Body is optional for this shape.
	var p signal.Payload
	_ = c.ShouldBindJSON(&p)

	sig, err := h.Normalizer.FromPath(strategyID, actionHint, p, signal.OriginAutomated)
	if err != nil {
		h.normalizeError(c, err)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("action webhook received",
			zap.String("signal_id", sig.ID),
			zap.String("strategy", sig.StrategyID),
			zap.String("hint", actionHint),
			zap.String("action", sig.Action),
		)
	}
	h.process(c, sig)
}

func (h *WebhookHandler) process(c *gin.Context, sig signal.Signal) {
	res, err := h.Processor.Process(c.Request.Context(), sig)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("signal processing failed",
				zap.String("signal_id", sig.ID),
				zap.Error(err),
			)
		}
		Detail(c, http.StatusInternalServerError, "Signal processing failed")
		return
	}
	switch res.Outcome {
	case engine.Accept:
		Success(c, res.Message)
	case engine.RejectNotFound:
		Detail(c, http.StatusNotFound, res.Message)
	default:
		Ignored(c, res.Message)
	}
}

func (h *WebhookHandler) normalizeError(c *gin.Context, err error) {
	if errors.Is(err, signal.ErrMissingStrategyID) {
		Detail(c, http.StatusBadRequest, "Strategy ID missing in payload")
		return
	}
	Detail(c, http.StatusBadRequest, err.Error())
}
