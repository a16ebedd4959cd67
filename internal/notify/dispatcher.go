package notify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Delivery is one fire-and-forget notification: a formatted chat message
// plus the raw canonical payload for webhook forwarding. Credentials are
// snapshotted from the strategy at dispatch time.
type Delivery struct {
	SignalID   string
	StrategyID string

	BotToken string
	ChatID   string
	Message  string

	ForwardURL string
	Payload    map[string]any
}

// Dispatcher pushes deliveries to both sinks on a background goroutine with
// a bounded timeout so a slow endpoint cannot stall signal processing.
// Failures are logged and never retried or surfaced.
type Dispatcher struct {
	Telegram *TelegramSender
	Forward  *WebhookForwarder
	Logger   *zap.Logger
	Timeout  time.Duration
}

func (d *Dispatcher) timeout() time.Duration {
	if d != nil && d.Timeout > 0 {
		return d.Timeout
	}
	return 10 * time.Second
}

func (d *Dispatcher) Dispatch(del Delivery) {
	if d == nil {
		return
	}
	go d.deliver(del)
}

func (d *Dispatcher) deliver(del Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	if d.Telegram != nil && strings.TrimSpace(del.BotToken) != "" && strings.TrimSpace(del.ChatID) != "" {
		if err := d.Telegram.Send(ctx, del.BotToken, del.ChatID, del.Message); err != nil {
			d.warn("telegram delivery failed", del, err)
		}
	}
	if d.Forward != nil && strings.TrimSpace(del.ForwardURL) != "" {
		if err := d.Forward.Send(ctx, del.ForwardURL, del.Payload); err != nil {
			d.warn("webhook forward failed", del, err)
		}
	}
}

func (d *Dispatcher) warn(msg string, del Delivery, err error) {
	if d.Logger == nil {
		return
	}
	d.Logger.Warn(msg,
		zap.String("signal_id", del.SignalID),
		zap.String("strategy", del.StrategyID),
		zap.Error(err),
	)
}
