package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradebridge/internal/repository"
)

// SignalLogHandler exposes the signal audit log.
type SignalLogHandler struct {
	Repo repository.Repository
}

func (h *SignalLogHandler) Register(r *gin.Engine) {
	r.GET("/api/signals", h.list)
}

func (h *SignalLogHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	var strategyID *string
	if v := strings.TrimSpace(c.Query("strategy")); v != "" {
		strategyID = &v
	}
	var outcome *string
	if v := strings.TrimSpace(c.Query("outcome")); v != "" {
		outcome = &v
	}

	params := repository.ListSignalLogsParams{
		Limit:      limit,
		Offset:     offset,
		StrategyID: strategyID,
		Outcome:    outcome,
	}
	items, err := h.Repo.ListSignalLogs(c.Request.Context(), params)
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := h.Repo.CountSignalLogs(c.Request.Context(), params)
	if err != nil {
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
