package dispatch

import (
	"context"
	"log/slog"
	"time"

	"lookout/internal/enhance"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/services"
)

// Dispatcher runs one inbound event through enhancement and forwards the
// result downstream exactly once. Enhancement failures of any kind collapse
// into forwarding the original text; only a failure of the forward itself
// reaches the caller.
type Dispatcher struct {
	enhancer  enhance.Enhancer
	forwarder notifications.Forwarder
	stats     *Stats
	logger    *slog.Logger
}

// NewDispatcher wires the dispatcher. Stats may be shared across rebuilds so
// counters survive configuration reloads.
func NewDispatcher(enhancer enhance.Enhancer, forwarder notifications.Forwarder, stats *Stats, logger *slog.Logger) *Dispatcher {
	if stats == nil {
		stats = &Stats{}
	}
	return &Dispatcher{
		enhancer:  enhancer,
		forwarder: forwarder,
		stats:     stats,
		logger:    logging.NewComponentLogger(logger, "dispatch"),
	}
}

// Result reports delivery back to the inbound caller.
type Result struct {
	EventID  string
	Enhanced bool
}

// Dispatch processes one event end to end.
func (d *Dispatcher) Dispatch(ctx context.Context, event *notifications.Event) (Result, error) {
	enhanceStart := time.Now()
	outcome, err := d.enhancer.Enhance(ctx, event)
	enhanceElapsed := time.Since(enhanceStart)
	d.stats.Record(outcome.SnapshotUsed)

	base := []any{logging.FieldEventID, event.ID}
	if source := event.SourceID(); source != "" {
		base = append(base, logging.FieldSource, source)
	}

	var fields *notifications.Fields
	outcomeLabel := "skipped"
	switch {
	case err != nil:
		outcomeLabel = "fallback"
		args := append(base,
			logging.FieldReason, services.FallbackReason(err),
			logging.Duration("enhance_elapsed", enhanceElapsed),
			logging.Error(err),
		)
		if outcome.Provider != "" {
			args = append(args, logging.FieldProvider, outcome.Provider)
		}
		d.logger.Warn("enhancement failed, forwarding original", args...)
	case outcome.Fields != nil:
		outcomeLabel = "enhanced"
		fields = outcome.Fields
		d.logger.Info("notification enhanced", append(base,
			logging.FieldProvider, outcome.Provider,
			logging.Duration("enhance_elapsed", enhanceElapsed))...)
	default:
		d.logger.Debug("enhancement skipped", append(base,
			logging.FieldReason, outcome.SkipReason)...)
	}

	forwardStart := time.Now()
	if err := d.forwarder.Forward(ctx, event, fields); err != nil {
		d.logger.Error("downstream delivery failed", append(base,
			logging.Duration("forward_elapsed", time.Since(forwardStart)),
			logging.Error(err))...)
		return Result{EventID: event.ID}, err
	}
	d.logger.Debug("notification delivered", append(base,
		logging.FieldOutcome, outcomeLabel,
		logging.Duration("forward_elapsed", time.Since(forwardStart)))...)
	return Result{EventID: event.ID, Enhanced: fields != nil}, nil
}

// StatsSnapshot exposes the counters for the status surface.
func (d *Dispatcher) StatsSnapshot() StatsSnapshot {
	return d.stats.Snapshot()
}
