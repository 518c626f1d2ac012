package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"lookout/internal/api"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/services"
)

// maxNotificationBytes bounds an intake request body. Media arrives inline
// as base64, so the cap is far above any realistic snapshot.
const maxNotificationBytes = 64 << 20

// shutdownGrace is how long in-flight requests get to finish once the
// server is asked to stop.
const shutdownGrace = 5 * time.Second

type apiServer struct {
	bind    string
	token   string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   bind,
		token:  token,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications", srv.requireToken(srv.handleNotifications))
	mux.HandleFunc("/api/status", srv.requireToken(srv.handleStatus))
	mux.HandleFunc("/healthz", srv.handleHealth)
	srv.handler = mux
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	// No write timeout: a notification request stays open for the full
	// enhancement deadline, which is operator-configured.
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	server := s.server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()
	context.AfterFunc(ctx, func() { shutdownServer(server) })

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownServer(s.server)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = server.Shutdown(ctx)
}

// addr reports the live listen address once started, the configured bind
// otherwise.
func (s *apiServer) addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// requireToken validates the bearer token when one is configured. /healthz
// stays open for probes.
func (s *apiServer) requireToken(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read request body: %v", err))
		return
	}

	event, err := notifications.ParseEvent(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := services.WithEventID(r.Context(), event.ID)
	if source := event.SourceID(); source != "" {
		ctx = services.WithSource(ctx, source)
	}

	result, err := s.daemon.dispatch(ctx, event)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("downstream delivery failed: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.NotifyResponse{
		Delivered: true,
		Enhanced:  result.Enhanced,
		EventID:   result.EventID,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := s.daemon.Status()
	providerStatuses := make([]api.ProviderStatus, len(status.Providers))
	for i, usage := range status.Providers {
		providerStatuses[i] = api.ProviderStatus{
			Name:       usage.Name,
			Model:      usage.Model,
			Selections: usage.Selections,
		}
	}

	payload := api.DaemonStatus{
		Running:            status.Running,
		PID:                status.PID,
		ListenAddr:         status.ListenAddr,
		LockFilePath:       status.LockFilePath,
		ConfigPath:         status.ConfigPath,
		ConfigVersion:      status.ConfigVersion,
		DetectorConfigured: status.DetectorConfigured,
		NotifierURL:        status.NotifierURL,
		Enhance: api.EnhanceSettings{
			Enabled:                status.Enhance.Enabled,
			SnapshotMode:           status.Enhance.SnapshotMode,
			TimeoutSeconds:         status.Enhance.TimeoutSeconds,
			IncludeOriginalMessage: status.Enhance.IncludeOriginalMessage,
		},
		Providers: providerStatuses,
		Stats: api.NotificationStats{
			Total:           status.Stats.Total,
			WithSnapshot:    status.Stats.WithSnapshot,
			WithoutSnapshot: status.Stats.WithoutSnapshot,
		},
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
