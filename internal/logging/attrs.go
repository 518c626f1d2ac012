package logging

import (
	"io"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers can build fields without importing slog.
type Attr = slog.Attr

// Bool builds a boolean attribute.
func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

// Duration builds a duration attribute.
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Int builds an integer attribute.
func Int(key string, value int) Attr { return slog.Int(key, value) }

// String builds a string attribute.
func String(key, value string) Attr { return slog.String(key, value) }

// Error builds an attribute for an error value, tolerating nil.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// NewNop returns a logger that discards every record.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewComponentLogger returns a logger whose records carry the component
// field, which the console handler folds into the message prefix. A nil
// base logger yields a discarding one.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
