package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateEnhance(); err != nil {
		return err
	}
	if err := c.validateNotifier(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.Bind == "" {
		return errors.New("daemon.bind must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEnhance() error {
	switch c.Enhance.SnapshotMode {
	case SnapshotModeCropped, SnapshotModeFull, SnapshotModeBoth:
	default:
		return fmt.Errorf("enhance.snapshot_mode must be one of cropped, full, both, got %q", c.Enhance.SnapshotMode)
	}
	if c.Enhance.TimeoutSeconds < 1 {
		return errors.New("enhance.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifier() error {
	if c.Notifier.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lookout/config.toml"
		}
		return fmt.Errorf("notifier.url is required. Edit %s (create with 'lookout config init')", defaultPath)
	}
	if c.Notifier.RequestTimeout <= 0 {
		return errors.New("notifier.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateProviders() error {
	seen := make(map[string]struct{}, len(c.Providers))
	for i, provider := range c.Providers {
		label := provider.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if provider.BaseURL == "" {
			return fmt.Errorf("providers.%s: base_url must be set", label)
		}
		if !strings.HasPrefix(provider.BaseURL, "http://") && !strings.HasPrefix(provider.BaseURL, "https://") {
			return fmt.Errorf("providers.%s: base_url must start with http:// or https://", label)
		}
		if provider.Model == "" {
			return fmt.Errorf("providers.%s: model must be set", label)
		}
		if _, dup := seen[provider.Name]; dup {
			return fmt.Errorf("providers: duplicate name %q", provider.Name)
		}
		seen[provider.Name] = struct{}{}
	}
	return nil
}
