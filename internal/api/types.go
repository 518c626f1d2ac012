package api

// NotifyResponse answers POST /api/notifications after the single downstream
// forward has happened.
type NotifyResponse struct {
	Delivered bool   `json:"delivered"`
	Enhanced  bool   `json:"enhanced"`
	EventID   string `json:"eventId"`
}

// ProviderStatus describes one rotation endpoint and how often it has been
// handed out since the pool was built.
type ProviderStatus struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Selections uint64 `json:"selections"`
}

// EnhanceSettings echoes the active enhancement settings so operators can
// confirm what a config reload actually applied.
type EnhanceSettings struct {
	Enabled                bool   `json:"enabled"`
	SnapshotMode           string `json:"snapshotMode"`
	TimeoutSeconds         int    `json:"timeoutSeconds"`
	IncludeOriginalMessage bool   `json:"includeOriginalMessage"`
}

// NotificationStats mirrors the dispatch counters.
type NotificationStats struct {
	Total           uint64 `json:"total"`
	WithSnapshot    uint64 `json:"withSnapshot"`
	WithoutSnapshot uint64 `json:"withoutSnapshot"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running            bool              `json:"running"`
	PID                int               `json:"pid"`
	StartedAt          string            `json:"startedAt,omitempty"`
	ListenAddr         string            `json:"listenAddr"`
	LockFilePath       string            `json:"lockFilePath"`
	ConfigPath         string            `json:"configPath"`
	ConfigVersion      int64             `json:"configVersion"`
	DetectorConfigured bool              `json:"detectorConfigured"`
	NotifierURL        string            `json:"notifierUrl"`
	Enhance            EnhanceSettings   `json:"enhance"`
	Providers          []ProviderStatus  `json:"providers"`
	Stats              NotificationStats `json:"stats"`
}

// ErrorResponse carries an API error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse answers GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
