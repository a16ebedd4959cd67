package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Strategy is one configured signal source plus its live trading state.
// The open-position set and the completed-trade history are stored as JSON
// documents so the whole record reads and rewrites as a unit.
type Strategy struct {
	ID   string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	Type string `gorm:"type:varchar(30);not null;default:'Automatic'" json:"type"`

	TelegramBotToken string `gorm:"type:text" json:"telegram_bot_token"`
	TelegramChatID   string `gorm:"type:text" json:"telegram_chat_id"`
	ForwardURL       string `gorm:"type:text" json:"forward_url"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// LastSignal is the most recent canonical action, empty until the first
	// signal is processed.
	LastSignal     string `gorm:"type:varchar(20)" json:"last_signal"`
	LastSignalTime string `gorm:"type:varchar(32)" json:"last_signal_time"`

	// PnL is the cumulative realized profit/loss. It always equals the sum
	// of PnL over CompletedTransactions.
	PnL decimal.Decimal `gorm:"column:pnl;type:numeric(30,10);not null;default:0" json:"pnl"`

	// OpenPositions maps symbol to the open leg; at most one leg per symbol.
	OpenPositions datatypes.JSONType[map[string]Position] `json:"open_positions"`

	// CompletedTransactions is ordered newest-first; closed legs are
	// prepended and never removed.
	CompletedTransactions datatypes.JSONType[[]ClosedTrade] `json:"completed_transactions"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}

// Positions returns the open-position document, never nil.
func (s *Strategy) Positions() map[string]Position {
	m := s.OpenPositions.Data()
	if m == nil {
		m = map[string]Position{}
	}
	return m
}

// Completed returns the completed-trade document, newest first.
func (s *Strategy) Completed() []ClosedTrade {
	return s.CompletedTransactions.Data()
}
