package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalLog records one inbound signal and the gating outcome it received.
// Rows are append-only; a retention job trims old entries.
type SignalLog struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SignalID string `gorm:"type:varchar(36);not null;index" json:"signal_id"`

	StrategyID string `gorm:"type:varchar(64);not null;index" json:"strategy_id"`
	Symbol     string `gorm:"type:varchar(50);not null" json:"symbol"`
	Action     string `gorm:"type:varchar(20);not null" json:"action"`

	Price  decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"price"`
	Origin string          `gorm:"type:varchar(10);not null" json:"origin"`

	Outcome string `gorm:"type:varchar(30);not null;index" json:"outcome"`
	Detail  string `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (SignalLog) TableName() string {
	return "signal_logs"
}
