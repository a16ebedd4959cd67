package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WebhookForwarder POSTs a canonical signal payload to a strategy's
// configured downstream URL.
type WebhookForwarder struct {
	HTTP *http.Client
}

func (f *WebhookForwarder) httpClient() *http.Client {
	if f != nil && f.HTTP != nil {
		return f.HTTP
	}
	return http.DefaultClient
}

func (f *WebhookForwarder) Send(ctx context.Context, url string, payload map[string]any) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("forward http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
