package enhance

import (
	"context"
	"log/slog"

	"lookout/internal/config"
	"lookout/internal/logging"
	"lookout/internal/notifications"
	"lookout/internal/providers"
	"lookout/internal/services"
	"lookout/internal/services/detector"
	"lookout/internal/snapshot"
)

// Enhancer produces replacement notification text for an event, or reports
// that the event should go out unchanged.
type Enhancer interface {
	Enhance(ctx context.Context, event *notifications.Event) (Outcome, error)
}

// Skip reasons recorded when enhancement is not attempted.
const (
	SkipDisabled   = "disabled"
	SkipNoMedia    = "no_media"
	SkipNoSnapshot = "no_snapshot"
	SkipNoProvider = "no_provider"
)

// Outcome reports how an event moved through enhancement. Fields is non-nil
// only when a validated response came back in time. SkipReason is non-empty
// when enhancement was never attempted. SnapshotUsed marks events whose
// snapshot selection reached a provider, whether or not the attempt
// succeeded; it is filled in even when Enhance also returns an error.
type Outcome struct {
	Fields       *notifications.Fields
	SkipReason   string
	SnapshotUsed bool
	Provider     string
}

// Pipeline runs the full enhancement flow: gate checks, snapshot assembly,
// prompt construction, provider selection, the raced inference call, and
// response validation.
type Pipeline struct {
	enabled         bool
	userStyle       string
	includeOriginal bool
	assembler       *snapshot.Assembler
	pool            *providers.Pool
	invoker         *Invoker
	logger          *slog.Logger
}

var _ Enhancer = (*Pipeline)(nil)

// NewPipeline builds the enhancer from configuration. A nil detector source
// disables full-frame fetches; everything else still works.
func NewPipeline(cfg *config.Config, pool *providers.Pool, source detector.Source, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		enabled:         cfg.Enhance.Enabled,
		userStyle:       cfg.Enhance.UserPrompt,
		includeOriginal: cfg.Enhance.IncludeOriginalMessage,
		assembler:       snapshot.NewAssembler(cfg, source, logger),
		pool:            pool,
		invoker:         NewInvoker(cfg.Enhance.TimeoutSeconds, logger),
		logger:          logging.NewComponentLogger(logger, "enhance"),
	}
}

// Enhance runs one event through the pipeline. Any error it returns means
// the caller forwards the original text; errors never carry partial fields.
func (p *Pipeline) Enhance(ctx context.Context, event *notifications.Event) (Outcome, error) {
	ctx = services.WithComponent(ctx, "enhance")
	if !p.enabled {
		return Outcome{SkipReason: SkipDisabled}, nil
	}
	if !event.HasMedia() {
		return Outcome{SkipReason: SkipNoMedia}, nil
	}
	if p.pool.Size() == 0 {
		return Outcome{SkipReason: SkipNoProvider}, nil
	}
	images := p.assembler.Assemble(ctx, event)
	if len(images) == 0 {
		return Outcome{SkipReason: SkipNoSnapshot}, nil
	}

	outcome := Outcome{SnapshotUsed: true}
	request, err := BuildRequest(p.userStyle, images, event.PromptMetadata(p.includeOriginal))
	if err != nil {
		return outcome, services.Wrap(services.ErrCall, "enhance", "prompt", "build request", err)
	}
	endpoint, err := p.pool.Select()
	if err != nil {
		return outcome, err
	}
	outcome.Provider = endpoint.Name

	p.logger.Debug("invoking provider",
		logging.FieldEventID, event.ID,
		logging.FieldProvider, endpoint.Name,
		"images", len(images))
	content, err := p.invoker.Invoke(ctx, endpoint, request)
	if err != nil {
		return outcome, err
	}
	fields, err := ValidateResponse(content)
	if err != nil {
		return outcome, err
	}
	outcome.Fields = fields
	return outcome, nil
}
