package models

import "github.com/shopspring/decimal"

// Position is one open leg. It exists only while the symbol has an unclosed
// leg under its strategy.
type Position struct {
	Symbol     string          `json:"symbol"`
	Action     string          `json:"action"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	EntryTime  string          `json:"entry_time"`
}

// ClosedTrade is a completed leg with its realized PnL rounded to two
// decimal places.
type ClosedTrade struct {
	Symbol      string          `json:"symbol"`
	Qty         int             `json:"qty"`
	EntryAction string          `json:"entry_action"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	EntryTime   string          `json:"entry_time"`
	ExitAction  string          `json:"exit_action"`
	ExitPrice   decimal.Decimal `json:"exit_price"`
	ExitTime    string          `json:"exit_time"`
	PnL         decimal.Decimal `json:"pnl"`
}
