package config

const (
	defaultAPIBind                = "127.0.0.1:8847"
	defaultLogDir                 = "~/.local/share/lookout/logs"
	defaultLockPath               = "~/.local/share/lookout/lookout.lock"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultSnapshotMode           = SnapshotModeCropped
	defaultEnhanceTimeoutSeconds  = 90
	defaultDetectorTimeoutSeconds = 15
	defaultNotifierRequestTimeout = 10

	// defaultUserPrompt is the style text appended to the system rules when the
	// operator has not supplied one.
	defaultUserPrompt = "Keep the tone plain and factual. Mention what the subject is doing and any notable objects or clothing colors."

	// llmAPIKeyEnv supplies a shared API key for providers that omit api_key.
	llmAPIKeyEnv = "LOOKOUT_LLM_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			Bind:     defaultAPIBind,
			LogDir:   defaultLogDir,
			LockPath: defaultLockPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Enhance: Enhance{
			Enabled:                true,
			SnapshotMode:           defaultSnapshotMode,
			TimeoutSeconds:         defaultEnhanceTimeoutSeconds,
			UserPrompt:             defaultUserPrompt,
			IncludeOriginalMessage: true,
		},
		Detector: Detector{
			TimeoutSeconds: defaultDetectorTimeoutSeconds,
		},
		Notifier: Notifier{
			RequestTimeout: defaultNotifierRequestTimeout,
		},
	}
}
