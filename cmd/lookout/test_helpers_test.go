package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lookout/internal/config"
	"lookout/internal/daemon"
	"lookout/internal/logging"
)

type notifierStub struct {
	mu       sync.Mutex
	requests [][]byte
}

func (s *notifierStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, body)
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (s *notifierStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *notifierStub) last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

type cliTestEnv struct {
	notifier   *notifierStub
	configPath string
	baseDir    string
}

// setupCLITestEnv starts a real daemon on an ephemeral port and writes a
// config file pointing the CLI at its resolved address.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	notifier := &notifierStub{}
	notifierSrv := httptest.NewServer(notifier.handler())
	t.Cleanup(notifierSrv.Close)

	cfgVal := config.Default()
	cfgVal.Daemon.Bind = "127.0.0.1:0"
	cfgVal.Daemon.LogDir = filepath.Join(base, "logs")
	cfgVal.Daemon.LockPath = filepath.Join(base, "lookout.lock")
	cfgVal.Notifier.URL = notifierSrv.URL
	cfgVal.Providers = []config.Provider{
		{Name: "p1", BaseURL: "http://127.0.0.1:9/v1", Model: "test-vision"},
	}
	cfg := &cfgVal
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	store := config.NewStore(cfg, "", logging.NewNop())
	d, err := daemon.New(store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
	})

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg, d.Status().ListenAddr)

	return &cliTestEnv{
		notifier:   notifier,
		configPath: configPath,
		baseDir:    base,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, bind string) {
	t.Helper()
	content := fmt.Sprintf(`[daemon]
bind = %q
log_dir = %q
lock_path = %q

[notifier]
url = %q

[[providers]]
name = "p1"
base_url = "http://127.0.0.1:9/v1"
model = "test-vision"
`,
		bind,
		cfg.Daemon.LogDir,
		cfg.Daemon.LockPath,
		cfg.Notifier.URL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
