package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"lookout/internal/api"
	"lookout/internal/config"
)

// statusTimeout bounds the quick read-only calls. Notify carries no client
// deadline because a legitimate enhancement holds the request open for the
// operator-configured provider timeout.
const statusTimeout = 10 * time.Second

// Client talks to a running lookoutd over its HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a client for the daemon bind address in cfg.
func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:    "http://" + cfg.Daemon.Bind,
		token:      cfg.Daemon.APIToken,
		httpClient: &http.Client{},
	}
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	var status api.DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Notify posts one notification payload through the daemon and reports the
// delivery outcome.
func (c *Client) Notify(ctx context.Context, payload []byte) (*api.NotifyResponse, error) {
	var reply api.NotifyResponse
	if err := c.do(ctx, http.MethodPost, "/api/notifications", bytes.NewReader(payload), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Health probes the daemon liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapDialError(err, c.baseURL)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, baseURL string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; verify lookoutd is running", baseURL)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}
