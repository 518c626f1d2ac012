package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for pipeline failures. Every error leaving a component is
// tagged with one of these so the dispatcher can record why enhancement fell
// back to the original text.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrDecode        = errors.New("image decode error")
	ErrTimeout       = errors.New("timeout")
	ErrCall          = errors.New("provider call error")
	ErrSchema        = errors.New("schema validation error")
	ErrUnavailable   = errors.New("downstream unavailable")
)

// Wrap tags err with marker for later outcome classification and prefixes
// the message with the component, operation, and message parts, skipping
// blanks. A nil marker defaults to ErrCall.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrCall
	}
	detail := joinDetail(component, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FallbackReason maps a pipeline error to the short reason recorded on the
// notification outcome when the original text is forwarded unchanged.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrCall):
		return "provider"
	default:
		return "error"
	}
}

func joinDetail(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return "service failure"
	}
	return strings.Join(kept, ": ")
}
