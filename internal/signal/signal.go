// Package signal normalizes heterogeneous inbound alert payloads into one
// canonical signal shape consumed by the position engine.
package signal

import "github.com/shopspring/decimal"

const (
	ActionBuy   = "BUY"
	ActionSell  = "SELL"
	ActionClose = "CLOSE"
)

const (
	OriginAutomated = "automated"
	OriginManual    = "manual"
)

// TimeLayout is the wall-clock format used for signal and leg timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Signal is a normalized instruction for a strategy+symbol at a price and
// time.
type Signal struct {
	// ID correlates log lines, audit rows, and forwarded payloads.
	ID string

	StrategyID string
	Symbol     string
	Action     string

	Price decimal.Decimal
	// PriceDefaulted is true when the raw price failed to parse and the
	// lenient-parsing policy substituted zero.
	PriceDefaulted bool

	Qty    int
	Time   string
	Origin string
}

// Manual reports whether the signal came from operator input rather than
// automated ingestion. Manual signals bypass the paused and duplicate gates.
func (s Signal) Manual() bool {
	return s.Origin == OriginManual
}
