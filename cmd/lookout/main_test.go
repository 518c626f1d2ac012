package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"lookout/internal/api"
)

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "running (pid")
	requireContains(t, out, "Providers")
	requireContains(t, out, "p1")
	requireContains(t, out, "test-vision")
	requireContains(t, out, "0 total")
}

func TestCLIStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}

	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status JSON: %v\noutput: %s", err, out)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if len(status.Providers) != 1 || status.Providers[0].Name != "p1" {
		t.Fatalf("unexpected providers %+v", status.Providers)
	}
}

func TestCLIStatusDaemonOffline(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[daemon]
bind = "127.0.0.1:1"
log_dir = %q
lock_path = %q

[notifier]
url = "http://127.0.0.1:9/notify"

[[providers]]
name = "offline-provider"
base_url = "http://127.0.0.1:9/v1"
model = "test-vision"
`, filepath.Join(base, "logs"), filepath.Join(base, "lookout.lock"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status offline: %v", err)
	}
	requireContains(t, out, "not running")
	requireContains(t, out, "offline-provider")
	requireContains(t, out, "Enhancement")
}

func TestCLISendDeliversNotification(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"send", "--title", "Backyard motion", "--body", "Person detected"}, env.configPath)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	requireContains(t, out, "delivered without enhancement")

	if env.notifier.count() != 1 {
		t.Fatalf("expected 1 forward, got %d", env.notifier.count())
	}
	forwarded := env.notifier.last()
	var delivered struct {
		Title   string          `json:"title"`
		Options json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(forwarded, &delivered); err != nil {
		t.Fatalf("decode forwarded payload: %v", err)
	}
	if delivered.Title != "Backyard motion" {
		t.Fatalf("unexpected forwarded title %q", delivered.Title)
	}
}

func TestCLISendFromFile(t *testing.T) {
	env := setupCLITestEnv(t)

	payloadPath := filepath.Join(env.baseDir, "payload.json")
	payload := `{"title":"Driveway","options":{"body":"Vehicle arrived"}}`
	if err := os.WriteFile(payloadPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	out, _, err := runCLI(t, []string{"send", "--file", payloadPath, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("send --file: %v", err)
	}

	var reply api.NotifyResponse
	if err := json.Unmarshal([]byte(out), &reply); err != nil {
		t.Fatalf("decode send JSON: %v\noutput: %s", err, out)
	}
	if !reply.Delivered || reply.EventID == "" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if env.notifier.count() != 1 {
		t.Fatalf("expected 1 forward, got %d", env.notifier.count())
	}
}

func TestCLISendRejectsMissingPayloadFile(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"send", "--file", filepath.Join(env.baseDir, "absent.json")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing payload file")
	}
	if env.notifier.count() != 0 {
		t.Fatalf("expected no forwards, got %d", env.notifier.count())
	}
}

func TestCLISendAttachesMediaFile(t *testing.T) {
	env := setupCLITestEnv(t)

	mediaPath := filepath.Join(env.baseDir, "frame.bin")
	if err := os.WriteFile(mediaPath, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}, 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	payload, err := buildSendPayload("", "Porch", "", "", mediaPath)
	if err != nil {
		t.Fatalf("buildSendPayload: %v", err)
	}
	var envelope struct {
		Title string `json:"title"`
		Media string `json:"media"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if envelope.Title != "Porch" {
		t.Fatalf("unexpected title %q", envelope.Title)
	}
	if envelope.Media == "" || envelope.Media[:5] != "data:" {
		t.Fatalf("expected data: media handle, got %q", envelope.Media)
	}
}
