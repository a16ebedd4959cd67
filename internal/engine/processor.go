package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tradebridge/internal/models"
	"tradebridge/internal/notify"
	"tradebridge/internal/repository"
	"tradebridge/internal/signal"
	"tradebridge/internal/stream"
)

// Dispatcher is the outbound notification sink. Implemented by
// notify.Dispatcher; faked in tests.
type Dispatcher interface {
	Dispatch(del notify.Delivery)
}

// Publisher is the live event stream. Implemented by stream.Hub.
type Publisher interface {
	Publish(evt stream.Event)
}

// Result is the caller-visible outcome of processing one signal.
type Result struct {
	Outcome Outcome
	Message string
	// Closed is set when the signal closed a leg.
	Closed *models.ClosedTrade
}

// Processor runs a canonical signal through gate, position engine, and
// store. The read-modify-write cycle against the store is serialized per
// strategy id; signals for different strategies proceed in parallel.
// Notifications go out only after the mutated state is persisted, outside
// the lock.
type Processor struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Notify Dispatcher
	Events Publisher

	locks keyedMutex
}

func (p *Processor) Process(ctx context.Context, sig signal.Signal) (Result, error) {
	res, st, err := p.run(ctx, sig)
	if err != nil {
		return Result{}, err
	}

	p.audit(ctx, sig, res.Outcome, res.Message)
	p.publish(sig, res)

	if res.Outcome == Accept && st != nil {
		p.dispatch(st, sig)
	}
	return res, nil
}

// run holds the per-strategy lock across load, gate, apply, and persist.
// The returned strategy is the post-mutation record on the accept path.
func (p *Processor) run(ctx context.Context, sig signal.Signal) (Result, *models.Strategy, error) {
	unlock := p.locks.lock(sig.StrategyID)
	defer unlock()

	st, err := p.Repo.GetStrategy(ctx, sig.StrategyID)
	if err != nil {
		return Result{}, nil, fmt.Errorf("load strategy %s: %w", sig.StrategyID, err)
	}

	outcome := Gate(st, sig)
	switch outcome {
	case RejectNotFound:
		return Result{
			Outcome: outcome,
			Message: fmt.Sprintf("Strategy '%s' not found", sig.StrategyID),
		}, nil, nil
	case IgnorePaused:
		return Result{Outcome: outcome, Message: "Strategy is paused"}, nil, nil
	case IgnoreDuplicate:
		return Result{
			Outcome: outcome,
			Message: fmt.Sprintf("Duplicate signal %s", sig.Action),
		}, nil, nil
	}

	applied := Apply(st, sig)
	if err := p.Repo.SaveStrategy(ctx, st); err != nil {
		// The in-memory mutation is discarded with the error; nothing is
		// committed and no notification goes out.
		return Result{}, nil, fmt.Errorf("persist strategy %s: %w", sig.StrategyID, err)
	}

	return Result{
		Outcome: Accept,
		Message: fmt.Sprintf("Signal processed for %s", sig.StrategyID),
		Closed:  applied.Closed,
	}, st, nil
}

func (p *Processor) audit(ctx context.Context, sig signal.Signal, outcome Outcome, detail string) {
	if p.Repo == nil {
		return
	}
	entry := &models.SignalLog{
		SignalID:   sig.ID,
		StrategyID: sig.StrategyID,
		Symbol:     sig.Symbol,
		Action:     sig.Action,
		Price:      sig.Price,
		Origin:     sig.Origin,
		Outcome:    outcome.String(),
		Detail:     detail,
	}
	if err := p.Repo.InsertSignalLog(ctx, entry); err != nil && p.Logger != nil {
		p.Logger.Warn("signal audit write failed",
			zap.String("signal_id", sig.ID),
			zap.Error(err),
		)
	}
}

func (p *Processor) publish(sig signal.Signal, res Result) {
	if p.Events == nil {
		return
	}
	evt := stream.Event{
		SignalID:   sig.ID,
		StrategyID: sig.StrategyID,
		Symbol:     sig.Symbol,
		Action:     sig.Action,
		Price:      sig.Price.String(),
		Time:       sig.Time,
		Origin:     sig.Origin,
		Outcome:    res.Outcome.String(),
	}
	if res.Closed != nil {
		evt.PnL = res.Closed.PnL.String()
	}
	p.Events.Publish(evt)
}

func (p *Processor) dispatch(st *models.Strategy, sig signal.Signal) {
	if p.Notify == nil {
		return
	}
	p.Notify.Dispatch(notify.Delivery{
		SignalID:   sig.ID,
		StrategyID: st.ID,
		BotToken:   st.TelegramBotToken,
		ChatID:     st.TelegramChatID,
		Message:    FormatMessage(st, sig),
		ForwardURL: st.ForwardURL,
		Payload: map[string]any{
			"signal_id": sig.ID,
			"strategy":  sig.StrategyID,
			"symbol":    sig.Symbol,
			"action":    sig.Action,
			"price":     sig.Price.String(),
			"time":      sig.Time,
			"qty":       sig.Qty,
		},
	})
}

// FormatMessage renders the Markdown chat message for one accepted signal.
func FormatMessage(st *models.Strategy, sig signal.Signal) string {
	name := st.Name
	if name == "" {
		name = st.ID
	}
	manualTag := ""
	if sig.Manual() {
		manualTag = " [MANUAL]"
	}
	return fmt.Sprintf("🚀 *%s*%s\n\nSymbol: %s\nAction: %s\nPrice: %s\nTime: %s",
		name, manualTag, sig.Symbol, sig.Action, sig.Price.String(), sig.Time)
}
