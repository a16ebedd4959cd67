package signal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMissingStrategyID is returned when a payload carries no strategy
// reference. Normalization fails before any state is read.
var ErrMissingStrategyID = errors.New("strategy id missing in payload")

// Payload is the raw inbound request body. Both webhook shapes and the
// manual override decode into it.
type Payload struct {
	Strategy string `json:"strategy"`
	Symbol   string `json:"symbol"`
	Action   string `json:"action"`
	Price    string `json:"price"`
	Time     string `json:"time"`
	Qty      int    `json:"qty"`
}

// pathActions maps granular path-segment tokens to canonical actions.
// Unrecognized tokens pass through upper-cased.
var pathActions = map[string]string{
	"BUY_ENTRY":  ActionBuy,
	"BUY_EXIT":   ActionClose,
	"SELL_ENTRY": ActionSell,
	"SELL_EXIT":  ActionClose,
}

// MapAction resolves a path-segment action hint to a canonical action.
func MapAction(hint string) string {
	upper := strings.ToUpper(strings.TrimSpace(hint))
	if mapped, ok := pathActions[upper]; ok {
		return mapped
	}
	return upper
}

// ParsePrice parses a price string, stripping thousands-separators. The
// second result is true when parsing failed and zero was substituted, so
// callers can tell a parsed zero from a defaulted one.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, true
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, true
	}
	return price, false
}

// Normalizer turns raw payloads into canonical signals. The zero value is
// ready to use; Now is overridable for tests.
type Normalizer struct {
	Now func() time.Time
}

func (n *Normalizer) clock() time.Time {
	if n != nil && n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// FromPayload normalizes a generic JSON body.
func (n *Normalizer) FromPayload(p Payload, origin string) (Signal, error) {
	strategyID := strings.TrimSpace(p.Strategy)
	if strategyID == "" {
		return Signal{}, ErrMissingStrategyID
	}

	symbol := strings.TrimSpace(p.Symbol)
	if symbol == "" {
		symbol = "Unknown"
	}

	price, defaulted := ParsePrice(p.Price)

	ts := strings.TrimSpace(p.Time)
	if ts == "" {
		ts = n.clock().Format(TimeLayout)
	}

	qty := p.Qty
	if qty <= 0 {
		qty = 1
	}

	return Signal{
		ID:             uuid.NewString(),
		StrategyID:     strategyID,
		Symbol:         symbol,
		Action:         strings.ToUpper(strings.TrimSpace(p.Action)),
		Price:          price,
		PriceDefaulted: defaulted,
		Qty:            qty,
		Time:           ts,
		Origin:         origin,
	}, nil
}

// FromPath normalizes an action-specific webhook: the path carries the
// strategy id and a granular action token, the optional body is merged with
// the derived action. A strategy id in the body wins over the path segment.
func (n *Normalizer) FromPath(strategyID, actionHint string, p Payload, origin string) (Signal, error) {
	if strings.TrimSpace(p.Strategy) == "" {
		p.Strategy = strategyID
	}
	p.Action = MapAction(actionHint)
	return n.FromPayload(p, origin)
}
