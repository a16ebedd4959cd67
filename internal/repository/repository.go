package repository

import (
	"context"
	"errors"
	"time"

	"tradebridge/internal/models"
)

// ErrStrategyExists is returned by CreateStrategy when the id is taken.
var ErrStrategyExists = errors.New("strategy id already exists")

// StrategyConfigUpdate carries the configuration fields an update may touch.
// Live state (pnl, positions, transactions, last signal) is never written
// through this path.
type StrategyConfigUpdate struct {
	Name             string
	Type             string
	TelegramBotToken string
	TelegramChatID   string
	ForwardURL       string
}

type ListSignalLogsParams struct {
	Limit      int
	Offset     int
	StrategyID *string
	Outcome    *string
	Since      *time.Time
}

// Repository is the durable store for strategy documents and the signal
// audit log. GetStrategy returns (nil, nil) when the id has no record;
// an empty backing file on first run yields an empty mapping, not an error.
type Repository interface {
	GetStrategy(ctx context.Context, id string) (*models.Strategy, error)
	ListStrategies(ctx context.Context) ([]models.Strategy, error)
	CreateStrategy(ctx context.Context, item *models.Strategy) error
	// SaveStrategy rewrites the whole strategy document. Callers must hold
	// the per-strategy lock across their read-modify-write cycle.
	SaveStrategy(ctx context.Context, item *models.Strategy) error
	DeleteStrategy(ctx context.Context, id string) (bool, error)
	UpdateStrategyConfig(ctx context.Context, id string, cfg StrategyConfigUpdate) (bool, error)
	SetStrategyActive(ctx context.Context, id string, active bool) (bool, error)

	InsertSignalLog(ctx context.Context, item *models.SignalLog) error
	ListSignalLogs(ctx context.Context, params ListSignalLogsParams) ([]models.SignalLog, error)
	CountSignalLogs(ctx context.Context, params ListSignalLogsParams) (int64, error)
	DeleteSignalLogsBefore(ctx context.Context, before time.Time) (int64, error)
}
