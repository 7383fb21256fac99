package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/cartsync/internal/events"
)

// WebhookNotifier implements Notifier by POSTing each event as JSON.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithHeaders adds static headers to every request.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		for k, v := range h {
			w.headers[k] = v
		}
	}
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:     url,
		headers: make(map[string]string),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type webhookPayload struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	MiniCartID *string   `json:"mini_cart_id"`
	At         time.Time `json:"at"`
}

func payloadFor(ev events.Event) webhookPayload {
	p := webhookPayload{ID: ev.ID, Event: string(ev.Kind), At: ev.At}
	if ev.MiniCartID != "" {
		id := ev.MiniCartID
		p.MiniCartID = &id
	}
	return p
}

// Send posts ev to the webhook.
func (w *WebhookNotifier) Send(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(payloadFor(ev))
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("webhook rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
