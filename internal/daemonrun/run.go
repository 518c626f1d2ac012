package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"lookout/internal/config"
	"lookout/internal/daemon"
	"lookout/internal/logging"
)

// Options carries command-line overrides applied on top of the loaded
// configuration.
type Options struct {
	// LogLevel overrides logging.level for this run when non-empty.
	LogLevel string
}

// Run starts the lookout daemon and blocks until SIGINT or SIGTERM.
// configPath is the resolved configuration file location; it is watched for
// rewrites so settings changes apply without a restart.
func Run(cmdCtx context.Context, cfg *config.Config, configPath string, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := buildLogger(cfg, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	removePID, err := writePIDFile(filepath.Join(cfg.Daemon.LogDir, "lookoutd.pid"))
	if err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer removePID()

	store := config.NewStore(cfg, configPath, logger)
	d, err := daemon.New(store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}
	if configPath != "" {
		go watchConfig(ctx, store, logger)
	}

	<-ctx.Done()
	logger.Info("lookout daemon shutting down")
	return nil
}

// buildLogger applies the command-line level override on a copy so the
// shared config stays untouched.
func buildLogger(cfg *config.Config, levelOverride string) (*slog.Logger, error) {
	loggerCfg := *cfg
	if levelOverride != "" {
		loggerCfg.Logging.Level = levelOverride
	}
	return logging.NewFromConfig(&loggerCfg)
}

func watchConfig(ctx context.Context, store *config.Store, logger *slog.Logger) {
	err := store.Watch(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	logger.Warn("config watcher stopped", logging.Error(err))
}

// writePIDFile records the daemon pid and returns a cleanup that removes
// the file on shutdown.
func writePIDFile(path string) (func(), error) {
	pid := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(pid), 0o644); err != nil {
		return nil, err
	}
	return func() { os.Remove(path) }, nil
}
