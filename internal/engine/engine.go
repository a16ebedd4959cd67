package engine

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"tradebridge/internal/models"
	"tradebridge/internal/signal"
)

// TradeResult reports what Apply did to the strategy's position set.
// At most one of Opened/Closed is set; both nil means the signal was a
// CLOSE with nothing open.
type TradeResult struct {
	Opened *models.Position
	Closed *models.ClosedTrade
}

// Apply runs one accepted signal through the per-symbol state machine and
// mutates the strategy in place.
//
// An open leg is closed by any incoming action, including a flip to the
// opposite direction; the flip does not re-open a new leg, that takes a
// subsequent signal. With no leg open, BUY/SELL opens one and CLOSE is
// swallowed. last_signal and last_signal_time update on every branch.
func Apply(st *models.Strategy, sig signal.Signal) TradeResult {
	positions := st.Positions()
	var result TradeResult

	if entry, ok := positions[sig.Symbol]; ok {
		pnl := legPnL(entry.Action, entry.EntryPrice, sig.Price).Round(2)
		trade := models.ClosedTrade{
			Symbol:      sig.Symbol,
			Qty:         sig.Qty,
			EntryAction: entry.Action,
			EntryPrice:  entry.EntryPrice,
			EntryTime:   entry.EntryTime,
			ExitAction:  sig.Action,
			ExitPrice:   sig.Price,
			ExitTime:    sig.Time,
			PnL:         pnl,
		}

		completed := append([]models.ClosedTrade{trade}, st.Completed()...)
		st.CompletedTransactions = datatypes.NewJSONType(completed)
		st.PnL = st.PnL.Add(pnl)
		delete(positions, sig.Symbol)
		result.Closed = &trade
	} else if sig.Action != signal.ActionClose {
		leg := models.Position{
			Symbol:     sig.Symbol,
			Action:     sig.Action,
			EntryPrice: sig.Price,
			EntryTime:  sig.Time,
		}
		positions[sig.Symbol] = leg
		result.Opened = &leg
	}

	st.LastSignal = sig.Action
	st.LastSignalTime = sig.Time
	st.OpenPositions = datatypes.NewJSONType(positions)
	return result
}

// legPnL computes the realized profit of a closed leg. Entries recorded with
// a non-directional action realize zero.
func legPnL(entryAction string, entryPrice, exitPrice decimal.Decimal) decimal.Decimal {
	switch entryAction {
	case signal.ActionBuy:
		return exitPrice.Sub(entryPrice)
	case signal.ActionSell:
		return entryPrice.Sub(exitPrice)
	default:
		return decimal.Zero
	}
}
