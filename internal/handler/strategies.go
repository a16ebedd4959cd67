package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradebridge/internal/engine"
	"tradebridge/internal/models"
	"tradebridge/internal/repository"
	"tradebridge/internal/signal"
)

// StrategyHandler is the configuration surface: CRUD, the active toggle,
// and the manual signal override.
type StrategyHandler struct {
	Repo       repository.Repository
	Processor  *engine.Processor
	Normalizer *signal.Normalizer
	Logger     *zap.Logger
}

func (h *StrategyHandler) Register(r *gin.Engine) {
	group := r.Group("/api/strategies")
	group.GET("", h.list)
	group.POST("", h.create)
	group.PUT("/:strategy_id", h.update)
	group.DELETE("/:strategy_id", h.delete)
	group.POST("/:strategy_id/toggle", h.toggle)
	group.POST("/:strategy_id/manual", h.manual)
}

type strategyRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
	ForwardURL       string `json:"forward_url"`
}

func (h *StrategyHandler) list(c *gin.Context) {
	items, err := h.Repo.ListStrategies(c.Request.Context())
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	mapping := make(map[string]models.Strategy, len(items))
	for _, item := range items {
		mapping[item.ID] = item
	}
	c.JSON(http.StatusOK, mapping)
}

func (h *StrategyHandler) create(c *gin.Context) {
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		Detail(c, http.StatusBadRequest, "Strategy id required")
		return
	}
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = "Automatic"
	}

	item := &models.Strategy{
		ID:                    id,
		Name:                  req.Name,
		Type:                  typ,
		TelegramBotToken:      req.TelegramBotToken,
		TelegramChatID:        req.TelegramChatID,
		ForwardURL:            req.ForwardURL,
		IsActive:              true,
		PnL:                   decimal.Zero,
		OpenPositions:         datatypes.NewJSONType(map[string]models.Position{}),
		CompletedTransactions: datatypes.NewJSONType([]models.ClosedTrade{}),
	}
	if err := h.Repo.CreateStrategy(c.Request.Context(), item); err != nil {
		if errors.Is(err, repository.ErrStrategyExists) {
			Detail(c, http.StatusBadRequest, "Strategy ID already exists")
			return
		}
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if h.Logger != nil {
		h.Logger.Info("strategy created", zap.String("strategy", id))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "strategy_id": id})
}

func (h *StrategyHandler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("strategy_id"))
	var req strategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Detail(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = "Automatic"
	}
	found, err := h.Repo.UpdateStrategyConfig(c.Request.Context(), id, repository.StrategyConfigUpdate{
		Name:             req.Name,
		Type:             typ,
		TelegramBotToken: req.TelegramBotToken,
		TelegramChatID:   req.TelegramChatID,
		ForwardURL:       req.ForwardURL,
	})
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		Detail(c, http.StatusNotFound, "Strategy not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "strategy_id": id})
}

func (h *StrategyHandler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("strategy_id"))
	found, err := h.Repo.DeleteStrategy(c.Request.Context(), id)
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		Detail(c, http.StatusNotFound, "Strategy not found")
		return
	}
	if h.Logger != nil {
		h.Logger.Info("strategy deleted", zap.String("strategy", id))
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Strategy " + id + " deleted"})
}

func (h *StrategyHandler) toggle(c *gin.Context) {
	id := strings.TrimSpace(c.Param("strategy_id"))
	item, err := h.Repo.GetStrategy(c.Request.Context(), id)
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		Detail(c, http.StatusNotFound, "Strategy not found")
		return
	}
	active := !item.IsActive
	if _, err := h.Repo.SetStrategyActive(c.Request.Context(), id, active); err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "is_active": active})
}

// manual runs a signal through the same pipeline with manual origin, which
// bypasses the paused and duplicate gates.
func (h *StrategyHandler) manual(c *gin.Context) {
	id := strings.TrimSpace(c.Param("strategy_id"))
	var p signal.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		Detail(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	p.Strategy = id

	sig, err := h.Normalizer.FromPayload(p, signal.OriginManual)
	if err != nil {
		if errors.Is(err, signal.ErrMissingStrategyID) {
			Detail(c, http.StatusBadRequest, "Strategy ID missing in payload")
			return
		}
		Detail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Processor.Process(c.Request.Context(), sig)
	if err != nil {
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
