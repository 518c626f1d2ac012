package logging

import (
	"context"
	"log/slog"

	"lookout/internal/services"
)

// Shared attribute keys. Every component logs with these names so lines can
// be correlated across the pipeline.
const (
	FieldComponent = "component"
	FieldEventID   = "event_id"
	FieldSource    = "source"
	FieldProvider  = "provider"
	// FieldOutcome records how a notification left the dispatcher
	// (enhanced, skipped, fallback); FieldReason says why.
	FieldOutcome = "outcome"
	FieldReason  = "reason"
)

// ContextFields collects the attributes carried by ctx: event id, source,
// and component, in that order.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.EventIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEventID, id))
	}
	if source, ok := services.SourceFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSource, source))
	}
	if component, ok := services.ComponentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldComponent, component))
	}
	return fields
}

// WithContext attaches any context-carried fields to logger. A nil logger
// yields the no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
