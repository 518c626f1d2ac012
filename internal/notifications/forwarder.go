package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lookout/internal/config"
	"lookout/internal/services"
)

const userAgent = "Lookout/0.1.0"

// Forwarder delivers the outgoing notification downstream. A nil fields
// argument forwards the event exactly as received; a non-nil one replaces
// the title and rewrites subtitle/body inside the options object. Media and
// icon always pass through unchanged.
type Forwarder interface {
	Forward(ctx context.Context, event *Event, fields *Fields) error
}

// WebhookForwarder posts notifications to the configured downstream URL.
type WebhookForwarder struct {
	url    string
	token  string
	client *http.Client
}

// NewForwarder builds the webhook forwarder from configuration.
func NewForwarder(cfg *config.Config) *WebhookForwarder {
	timeout := time.Duration(cfg.Notifier.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookForwarder{
		url:    strings.TrimSpace(cfg.Notifier.URL),
		token:  strings.TrimSpace(cfg.Notifier.Token),
		client: &http.Client{Timeout: timeout},
	}
}

type outboundEnvelope struct {
	Title   string          `json:"title"`
	Options json.RawMessage `json:"options,omitempty"`
	Media   string          `json:"media,omitempty"`
	Icon    string          `json:"icon,omitempty"`
}

// Forward sends the notification downstream exactly once.
func (f *WebhookForwarder) Forward(ctx context.Context, event *Event, fields *Fields) error {
	envelope := outboundEnvelope{
		Title:   event.Title,
		Options: event.Options,
		Media:   event.Media,
		Icon:    event.Icon,
	}
	if fields != nil {
		rewritten, err := rewriteOptions(event.Options, fields)
		if err != nil {
			return fmt.Errorf("forward notification: rewrite options: %w", err)
		}
		envelope.Title = fields.Title
		envelope.Options = rewritten
	}
	return f.send(ctx, envelope)
}

// rewriteOptions replaces subtitle and body inside the original options
// object while leaving every other key intact.
func rewriteOptions(original json.RawMessage, fields *Fields) (json.RawMessage, error) {
	options := map[string]any{}
	if len(original) > 0 {
		if err := json.Unmarshal(original, &options); err != nil {
			return nil, err
		}
	}
	options["subtitle"] = fields.Subtitle
	options["body"] = fields.Body
	return json.Marshal(options)
}

func (f *WebhookForwarder) send(ctx context.Context, envelope outboundEnvelope) error {
	if f == nil || f.client == nil {
		return nil
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build notifier request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "notifier", "forward", "send notification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		message := fmt.Sprintf("notifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return services.Wrap(services.ErrUnavailable, "notifier", "forward", message, nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
