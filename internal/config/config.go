package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Daemon contains bind address, log directory, and lock file configuration.
// APIToken, when set, is required as a bearer token on every /api request.
type Daemon struct {
	Bind     string `toml:"bind"`
	APIToken string `toml:"api_token"`
	LogDir   string `toml:"log_dir"`
	LockPath string `toml:"lock_path"`
}

// Logging selects the log output format and minimum level.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Enhance contains configuration for the notification enhancement pipeline.
type Enhance struct {
	Enabled                bool   `toml:"enabled"`
	SnapshotMode           string `toml:"snapshot_mode"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	UserPrompt             string `toml:"user_prompt"`
	IncludeOriginalMessage bool   `toml:"include_original_message"`
}

// Detector contains configuration for the detection-input collaborator that
// serves full-scene frames for a detection event. An empty base URL means the
// capability is absent and full-frame fetches are skipped.
type Detector struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifier contains configuration for the downstream notifier webhook that
// receives every notification, enhanced or not.
type Notifier struct {
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Provider describes one chat-completion endpoint used for enhancement.
// Providers are tried in configured order, round-robin across events.
type Provider struct {
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// Config holds every Lookout setting. Sections map one-to-one onto TOML
// tables:
//   - Daemon: bind address, log directory, and lock file
//   - Logging: log format and level
//   - Enhance: pipeline toggle, snapshot mode, timeout, and prompt style
//   - Detector: full-frame fetch collaborator (optional capability)
//   - Notifier: downstream webhook that receives every notification
//   - Providers: ordered chat-completion endpoints for enhancement
type Config struct {
	Daemon    Daemon     `toml:"daemon"`
	Logging   Logging    `toml:"logging"`
	Enhance   Enhance    `toml:"enhance"`
	Detector  Detector   `toml:"detector"`
	Notifier  Notifier   `toml:"notifier"`
	Providers []Provider `toml:"providers"`
}

// DefaultConfigPath is where `config init` writes and Load looks first:
// ~/.config/lookout/config.toml, tilde-expanded.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lookout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved file path, the third whether the file existed; a missing file
// yields pure defaults rather than an error.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	if err := toml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath picks the config file to use: an explicit path wins even
// when the file does not exist yet, otherwise the user config dir is tried
// before a lookout.toml in the working directory.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, statErr := os.Stat(expanded); {
		case statErr == nil:
			return expanded, true, nil
		case errors.Is(statErr, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", statErr)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lookout.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories makes the log directory and the lock file's parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Daemon.LogDir}
	if dir := filepath.Dir(c.Daemon.LockPath); dir != "." && dir != "" {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	switch {
	case p == "~":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = home
	case strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	absolute, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return absolute, nil
}

// ExpandPath applies the same tilde and absolute-path normalization used on
// config path fields. The CLI uses it for --path style flags.
func ExpandPath(p string) (string, error) {
	return expandPath(p)
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SnapshotMode values accepted by enhance.snapshot_mode.
const (
	SnapshotModeCropped = "cropped"
	SnapshotModeFull    = "full"
	SnapshotModeBoth    = "both"
)

// ProviderEndpoints returns the ordered provider list with normalized fields.
// The slice is a copy; mutating it does not affect the config.
func (c *Config) ProviderEndpoints() []Provider {
	out := make([]Provider, len(c.Providers))
	copy(out, c.Providers)
	return out
}
