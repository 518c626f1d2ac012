package daemonctl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lookout/internal/api"
	"lookout/internal/config"
)

func testClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Daemon.Bind = strings.TrimPrefix(srv.URL, "http://")
	cfg.Daemon.APIToken = token
	return New(&cfg)
}

func TestStatusDecodesResponse(t *testing.T) {
	var gotAuth string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(api.DaemonStatus{
			Running:    true,
			PID:        4242,
			ListenAddr: "127.0.0.1:9800",
		}); err != nil {
			t.Errorf("encode status: %v", err)
		}
	}), "sekrit")

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 4242 {
		t.Fatalf("unexpected status %+v", status)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
}

func TestNotifyPostsPayload(t *testing.T) {
	var gotMethod, gotBody, gotContentType string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(api.NotifyResponse{Delivered: true, Enhanced: true, EventID: "ev-1"}); err != nil {
			t.Errorf("encode reply: %v", err)
		}
	}), "")

	reply, err := client.Notify(context.Background(), []byte(`{"title":"Motion"}`))
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if gotBody != `{"title":"Motion"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
	if !reply.Delivered || !reply.Enhanced || reply.EventID != "ev-1" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestDoSurfacesAPIError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		if err := json.NewEncoder(w).Encode(api.ErrorResponse{Error: "downstream delivery failed"}); err != nil {
			t.Errorf("encode error: %v", err)
		}
	}), "")

	_, err := client.Notify(context.Background(), []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "downstream delivery failed") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDoMapsConnectionRefused(t *testing.T) {
	cfg := config.Default()
	cfg.Daemon.Bind = "127.0.0.1:1"
	client := New(&cfg)

	err := client.Health(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "verify lookoutd is running") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestHealthAcceptsOK(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok"}); err != nil {
			t.Errorf("encode health: %v", err)
		}
	}), "")

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
