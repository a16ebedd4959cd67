package signal

import (
	"errors"
	"testing"
	"time"
)

func TestMapAction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BUY_ENTRY", "BUY"},
		{"BUY_EXIT", "CLOSE"},
		{"SELL_ENTRY", "SELL"},
		{"SELL_EXIT", "CLOSE"},
		{"sell_entry", "SELL"},
		{"CLOSE", "CLOSE"},
		{"custom_token", "CUSTOM_TOKEN"},
	}
	for _, tt := range tests {
		if got := MapAction(tt.in); got != tt.want {
			t.Fatalf("MapAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in            string
		want          string
		wantDefaulted bool
	}{
		{"100.50", "100.5", false},
		{"1,234.56", "1234.56", false},
		{"12,34,567", "1234567", false},
		{"0", "0", false},
		{"", "0", true},
		{"N/A", "0", true},
		{"garbage", "0", true},
	}
	for _, tt := range tests {
		got, defaulted := ParsePrice(tt.in)
		if got.String() != tt.want {
			t.Fatalf("ParsePrice(%q) = %s, want %s", tt.in, got.String(), tt.want)
		}
		if defaulted != tt.wantDefaulted {
			t.Fatalf("ParsePrice(%q) defaulted=%v, want %v", tt.in, defaulted, tt.wantDefaulted)
		}
	}
}

func TestFromPayloadMissingStrategy(t *testing.T) {
	n := &Normalizer{}
	_, err := n.FromPayload(Payload{Symbol: "RELIANCE", Action: "BUY"}, OriginAutomated)
	if !errors.Is(err, ErrMissingStrategyID) {
		t.Fatalf("err = %v, want ErrMissingStrategyID", err)
	}
}

func TestFromPayloadDefaults(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	n := &Normalizer{Now: func() time.Time { return fixed }}

	sig, err := n.FromPayload(Payload{Strategy: "S1", Action: "buy"}, OriginAutomated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Symbol != "Unknown" {
		t.Fatalf("symbol = %q, want Unknown", sig.Symbol)
	}
	if sig.Action != "BUY" {
		t.Fatalf("action = %q, want BUY", sig.Action)
	}
	if sig.Time != "2026-03-14 09:30:00" {
		t.Fatalf("time = %q, want fixed clock format", sig.Time)
	}
	if sig.Qty != 1 {
		t.Fatalf("qty = %d, want 1", sig.Qty)
	}
	if !sig.PriceDefaulted || !sig.Price.IsZero() {
		t.Fatalf("price = %s (defaulted=%v), want defaulted zero", sig.Price, sig.PriceDefaulted)
	}
	if sig.ID == "" {
		t.Fatalf("signal id not assigned")
	}
}

func TestFromPayloadExplicitFields(t *testing.T) {
	n := &Normalizer{}
	sig, err := n.FromPayload(Payload{
		Strategy: "S1",
		Symbol:   "RELIANCE",
		Action:   "BUY",
		Price:    "2,500.25",
		Time:     "2026-01-02 10:00:00",
		Qty:      3,
	}, OriginManual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Price.String() != "2500.25" || sig.PriceDefaulted {
		t.Fatalf("price = %s (defaulted=%v), want 2500.25 parsed", sig.Price, sig.PriceDefaulted)
	}
	if sig.Time != "2026-01-02 10:00:00" {
		t.Fatalf("time = %q, want payload time kept", sig.Time)
	}
	if sig.Qty != 3 {
		t.Fatalf("qty = %d, want 3", sig.Qty)
	}
	if !sig.Manual() {
		t.Fatalf("expected manual origin")
	}
}

func TestFromPathMergesActionAndStrategy(t *testing.T) {
	n := &Normalizer{}

	sig, err := n.FromPath("S1", "buy_exit", Payload{Symbol: "XYZ", Price: "10"}, OriginAutomated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.StrategyID != "S1" {
		t.Fatalf("strategy = %q, want path id", sig.StrategyID)
	}
	if sig.Action != ActionClose {
		t.Fatalf("action = %q, want CLOSE", sig.Action)
	}

	// A strategy id in the body wins over the path segment.
	sig, err = n.FromPath("S1", "SELL_ENTRY", Payload{Strategy: "S2"}, OriginAutomated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.StrategyID != "S2" {
		t.Fatalf("strategy = %q, want body id", sig.StrategyID)
	}
	if sig.Action != ActionSell {
		t.Fatalf("action = %q, want SELL", sig.Action)
	}
}
