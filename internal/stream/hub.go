// Package stream broadcasts processed-signal events to websocket
// subscribers, feeding dashboard live updates.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Event is one processed signal as seen by dashboard clients.
type Event struct {
	SignalID   string `json:"signal_id"`
	StrategyID string `json:"strategy"`
	Symbol     string `json:"symbol"`
	Action     string `json:"action"`
	Price      string `json:"price"`
	Time       string `json:"time"`
	Origin     string `json:"origin"`
	Outcome    string `json:"outcome"`
	PnL        string `json:"pnl,omitempty"`
}

// Hub fans events out to connected subscribers. Slow subscribers drop
// events rather than block publishers.
type Hub struct {
	Buffer int

	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func (h *Hub) buffer() int {
	if h != nil && h.Buffer > 0 {
		return h.Buffer
	}
	return 16
}

// Publish is non-blocking; it is safe to call from the signal processor's
// hot path.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (h *Hub) subscribe() chan Event {
	ch := make(chan Event, h.buffer())
	h.mu.Lock()
	if h.subs == nil {
		h.subs = map[chan Event]struct{}{}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Serve upgrades the request to a websocket and streams events until the
// client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, evt)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
