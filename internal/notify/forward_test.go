package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestForwarderPostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := &WebhookForwarder{}
	err := f.Send(context.Background(), srv.URL, map[string]any{
		"strategy": "S1",
		"action":   "BUY",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["strategy"] != "S1" || got["action"] != "BUY" {
		t.Fatalf("payload = %v", got)
	}
}

func TestForwarderNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := &WebhookForwarder{}
	if err := f.Send(context.Background(), srv.URL, map[string]any{}); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestForwarderEmptyURLIsNoOp(t *testing.T) {
	f := &WebhookForwarder{}
	if err := f.Send(context.Background(), "  ", map[string]any{}); err != nil {
		t.Fatalf("empty url: %v", err)
	}
}
