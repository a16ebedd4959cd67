// Package engine holds the signal gating filter and the per-symbol position
// state machine, plus the processor that serializes the read-modify-write
// cycle per strategy.
package engine

import (
	"tradebridge/internal/models"
	"tradebridge/internal/signal"
)

// Outcome is the gating decision for one inbound signal.
type Outcome int

const (
	Accept Outcome = iota
	RejectNotFound
	IgnorePaused
	IgnoreDuplicate
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "accepted"
	case RejectNotFound:
		return "rejected_not_found"
	case IgnorePaused:
		return "ignored_paused"
	case IgnoreDuplicate:
		return "ignored_duplicate"
	default:
		return "unknown"
	}
}

// Gate decides whether a canonical signal reaches the position engine.
//
// Manual-origin signals bypass both the paused and the duplicate checks.
// Repeated CLOSE signals are never deduplicated; the engine treats a CLOSE
// with nothing open as a no-op, so each one is safe to evaluate. The
// duplicate check exists to absorb repeated entry alerts from charting tools
// without creating phantom re-entries.
func Gate(st *models.Strategy, sig signal.Signal) Outcome {
	if st == nil {
		return RejectNotFound
	}
	if sig.Manual() {
		return Accept
	}
	if !st.IsActive {
		return IgnorePaused
	}
	if sig.Action == st.LastSignal && sig.Action != signal.ActionClose {
		return IgnoreDuplicate
	}
	return Accept
}
