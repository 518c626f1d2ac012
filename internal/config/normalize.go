package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeEnhance()
	c.normalizeDetector()
	c.normalizeNotifier()
	c.normalizeProviders()
	return nil
}

func (c *Config) normalizeDaemon() error {
	var err error
	c.Daemon.Bind = strings.TrimSpace(c.Daemon.Bind)
	if c.Daemon.Bind == "" {
		c.Daemon.Bind = defaultAPIBind
	}
	c.Daemon.APIToken = strings.TrimSpace(c.Daemon.APIToken)
	if strings.TrimSpace(c.Daemon.LogDir) == "" {
		c.Daemon.LogDir = defaultLogDir
	}
	if c.Daemon.LogDir, err = expandPath(c.Daemon.LogDir); err != nil {
		return fmt.Errorf("daemon.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Daemon.LockPath) == "" {
		c.Daemon.LockPath = defaultLockPath
	}
	if c.Daemon.LockPath, err = expandPath(c.Daemon.LockPath); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeEnhance() {
	c.Enhance.SnapshotMode = strings.ToLower(strings.TrimSpace(c.Enhance.SnapshotMode))
	if c.Enhance.SnapshotMode == "" {
		c.Enhance.SnapshotMode = defaultSnapshotMode
	}
	// Zero means unset; explicit sub-second values are floored to one second
	// rather than rejected so a misconfigured timeout never disables delivery.
	if c.Enhance.TimeoutSeconds == 0 {
		c.Enhance.TimeoutSeconds = defaultEnhanceTimeoutSeconds
	} else if c.Enhance.TimeoutSeconds < 1 {
		c.Enhance.TimeoutSeconds = 1
	}
	if strings.TrimSpace(c.Enhance.UserPrompt) == "" {
		c.Enhance.UserPrompt = defaultUserPrompt
	}
}

func (c *Config) normalizeDetector() {
	c.Detector.BaseURL = strings.TrimRight(strings.TrimSpace(c.Detector.BaseURL), "/")
	c.Detector.APIKey = strings.TrimSpace(c.Detector.APIKey)
	if c.Detector.TimeoutSeconds <= 0 {
		c.Detector.TimeoutSeconds = defaultDetectorTimeoutSeconds
	}
}

func (c *Config) normalizeNotifier() {
	c.Notifier.URL = strings.TrimSpace(c.Notifier.URL)
	c.Notifier.Token = strings.TrimSpace(c.Notifier.Token)
	if c.Notifier.RequestTimeout <= 0 {
		c.Notifier.RequestTimeout = defaultNotifierRequestTimeout
	}
}

func (c *Config) normalizeProviders() {
	sharedKey := ""
	if value, ok := os.LookupEnv(llmAPIKeyEnv); ok {
		sharedKey = strings.TrimSpace(value)
	}

	kept := make([]Provider, 0, len(c.Providers))
	for i, provider := range c.Providers {
		provider.Name = strings.TrimSpace(provider.Name)
		provider.BaseURL = strings.TrimRight(strings.TrimSpace(provider.BaseURL), "/")
		provider.APIKey = strings.TrimSpace(provider.APIKey)
		provider.Model = strings.TrimSpace(provider.Model)

		if provider.Name == "" && provider.BaseURL == "" && provider.APIKey == "" && provider.Model == "" {
			continue
		}
		if provider.APIKey == "" {
			provider.APIKey = sharedKey
		}
		if provider.Name == "" {
			provider.Name = deriveProviderName(provider.BaseURL, i)
		}
		kept = append(kept, provider)
	}
	c.Providers = kept
}

func deriveProviderName(baseURL string, index int) string {
	if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return fmt.Sprintf("provider-%d", index+1)
}
