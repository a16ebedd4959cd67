package engine

import (
	"testing"

	"tradebridge/internal/models"
	"tradebridge/internal/signal"
)

func TestGateNotFound(t *testing.T) {
	sig := signal.Signal{StrategyID: "missing", Action: signal.ActionBuy, Origin: signal.OriginAutomated}
	if got := Gate(nil, sig); got != RejectNotFound {
		t.Fatalf("outcome = %v, want RejectNotFound", got)
	}
}

func TestGatePausedStrategy(t *testing.T) {
	st := &models.Strategy{ID: "S1", IsActive: false}

	auto := signal.Signal{StrategyID: "S1", Action: signal.ActionBuy, Origin: signal.OriginAutomated}
	if got := Gate(st, auto); got != IgnorePaused {
		t.Fatalf("automated on paused: outcome = %v, want IgnorePaused", got)
	}

	manual := signal.Signal{StrategyID: "S1", Action: signal.ActionBuy, Origin: signal.OriginManual}
	if got := Gate(st, manual); got != Accept {
		t.Fatalf("manual on paused: outcome = %v, want Accept", got)
	}
}

func TestGateDuplicate(t *testing.T) {
	st := &models.Strategy{ID: "S1", IsActive: true, LastSignal: signal.ActionBuy}

	dup := signal.Signal{StrategyID: "S1", Action: signal.ActionBuy, Origin: signal.OriginAutomated}
	if got := Gate(st, dup); got != IgnoreDuplicate {
		t.Fatalf("repeated BUY: outcome = %v, want IgnoreDuplicate", got)
	}

	flip := signal.Signal{StrategyID: "S1", Action: signal.ActionSell, Origin: signal.OriginAutomated}
	if got := Gate(st, flip); got != Accept {
		t.Fatalf("direction change: outcome = %v, want Accept", got)
	}

	manualDup := signal.Signal{StrategyID: "S1", Action: signal.ActionBuy, Origin: signal.OriginManual}
	if got := Gate(st, manualDup); got != Accept {
		t.Fatalf("manual duplicate: outcome = %v, want Accept", got)
	}
}

func TestGateRepeatedCloseNeverDeduplicated(t *testing.T) {
	st := &models.Strategy{ID: "S1", IsActive: true, LastSignal: signal.ActionClose}
	sig := signal.Signal{StrategyID: "S1", Action: signal.ActionClose, Origin: signal.OriginAutomated}
	if got := Gate(st, sig); got != Accept {
		t.Fatalf("repeated CLOSE: outcome = %v, want Accept", got)
	}
}
