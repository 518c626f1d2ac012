package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lookout/internal/config"
)

// Source fetches the full, uncropped frame recorded for a detection event.
// Implementations return the raw image bytes the device stored for that
// detection, not a fresh live snapshot.
type Source interface {
	DetectionInput(ctx context.Context, detectionID, eventID string) ([]byte, error)
}

// Client talks to the detection recorder HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a detector client.
func New(cfg config.Detector, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("detector base url required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FromConfig returns the detector source, or nil when the capability is not
// configured. Full-frame context is optional: a nil source just means the
// snapshot assembler works from the cropped image alone.
func FromConfig(cfg *config.Config) Source {
	if strings.TrimSpace(cfg.Detector.BaseURL) == "" {
		return nil
	}
	client, err := New(cfg.Detector)
	if err != nil {
		return nil
	}
	return client
}

// DetectionInput fetches the recorded frame for a detection.
func (c *Client) DetectionInput(ctx context.Context, detectionID, eventID string) ([]byte, error) {
	detectionID = strings.TrimSpace(detectionID)
	if detectionID == "" {
		return nil, errors.New("detection id must not be empty")
	}
	endpoint, err := url.JoinPath(c.baseURL, "detections", detectionID, "input")
	if err != nil {
		return nil, fmt.Errorf("parse detector url: %w", err)
	}
	if eventID = strings.TrimSpace(eventID); eventID != "" {
		params := url.Values{}
		params.Set("eventId", eventID)
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("detector request failed after %v: %w", elapsed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector input fetch returned %d after %v", resp.StatusCode, elapsed)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read detection input: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("detector returned empty detection input")
	}
	return data, nil
}
