package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"lookout/internal/config"
	"lookout/internal/dispatch"
	"lookout/internal/enhance"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/providers"
	"lookout/internal/services/detector"
)

// Daemon owns the intake API, the enhancement components, and the
// single-instance lock. Configuration reloads rebuild the components in
// place: the dispatch counters always survive a rebuild, and the provider
// rotation survives when the provider list itself is unchanged. The bind
// address and API token are fixed at construction; changing them requires a
// restart.
type Daemon struct {
	store  *config.Store
	logger *slog.Logger
	stats  *dispatch.Stats

	lockPath string
	lock     *flock.Flock

	mu         sync.RWMutex
	cfg        *config.Config
	pool       *providers.Pool
	dispatcher *dispatch.Dispatcher

	api *apiServer

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running            bool
	PID                int
	StartedAt          time.Time
	ListenAddr         string
	LockFilePath       string
	ConfigPath         string
	ConfigVersion      int64
	DetectorConfigured bool
	NotifierURL        string
	Enhance            config.Enhance
	Providers          []providers.Usage
	Stats              dispatch.StatsSnapshot
}

// New constructs a daemon around the given configuration store and
// subscribes to its reloads.
func New(store *config.Store, logger *slog.Logger) (*Daemon, error) {
	if store == nil || logger == nil {
		return nil, errors.New("daemon requires config store and logger")
	}
	cfg := store.Current()
	if cfg == nil {
		return nil, errors.New("config store has no active snapshot")
	}

	d := &Daemon{
		store:    store,
		logger:   logger,
		stats:    &dispatch.Stats{},
		lockPath: cfg.Daemon.LockPath,
		lock:     flock.New(cfg.Daemon.LockPath),
	}
	d.rebuild(cfg)
	d.api = newAPIServer(cfg.Daemon.Bind, cfg.Daemon.APIToken, d, logger)
	store.Subscribe(d.handleReload)
	return d, nil
}

// rebuild swaps the enhancement components for a new config snapshot. It
// reports whether the provider rotation was carried over.
func (d *Daemon) rebuild(cfg *config.Config) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pool := d.pool
	reused := pool != nil && pool.Matches(cfg.ProviderEndpoints())
	if !reused {
		pool = providers.FromConfig(cfg)
	}

	pipeline := enhance.NewPipeline(cfg, pool, detector.FromConfig(cfg), d.logger)
	forwarder := notifications.NewForwarder(cfg)

	d.cfg = cfg
	d.pool = pool
	d.dispatcher = dispatch.NewDispatcher(pipeline, forwarder, d.stats, d.logger)
	return reused
}

func (d *Daemon) handleReload(cfg *config.Config) {
	reused := d.rebuild(cfg)
	d.logger.Info("components rebuilt after config reload",
		logging.Int("providers", len(cfg.Providers)),
		logging.Bool("rotation_preserved", reused))
}

// dispatch routes one parsed event through the current component set.
func (d *Daemon) dispatch(ctx context.Context, event *notifications.Event) (dispatch.Result, error) {
	d.mu.RLock()
	dispatcher := d.dispatcher
	d.mu.RUnlock()
	return dispatcher.Dispatch(ctx, event)
}

// Start acquires the daemon lock and brings up the intake API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lookout daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("lookout daemon started",
		logging.String("listen", d.api.addr()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the intake API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lookout daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// StatsSnapshot exposes the dispatch counters.
func (d *Daemon) StatsSnapshot() dispatch.StatsSnapshot {
	return d.stats.Snapshot()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	cfg := d.cfg
	pool := d.pool
	d.mu.RUnlock()

	status := Status{
		Running:            d.running.Load(),
		PID:                os.Getpid(),
		ListenAddr:         d.api.addr(),
		LockFilePath:       d.lockPath,
		ConfigPath:         d.store.Path(),
		ConfigVersion:      d.store.Version(),
		DetectorConfigured: cfg.Detector.BaseURL != "",
		NotifierURL:        cfg.Notifier.URL,
		Enhance:            cfg.Enhance,
		Providers:          pool.Stats(),
		Stats:              d.stats.Snapshot(),
	}
	if status.Running {
		status.StartedAt = d.startedAt
	}
	return status
}
