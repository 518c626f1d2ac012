package notifications

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Event is one inbound notification. Options holds the caller's options
// object exactly as received; when the event is forwarded without
// enhancement those bytes go back out verbatim.
type Event struct {
	ID      string
	Title   string
	Media   string
	Icon    string
	Options json.RawMessage
}

// Fields is the replaceable text surface of a notification: the three
// strings a successful enhancement produces and a fallback leaves alone.
type Fields struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
}

type inboundEnvelope struct {
	Title   string          `json:"title"`
	Options json.RawMessage `json:"options"`
	Media   string          `json:"media"`
	Icon    string          `json:"icon"`
}

// ParseEvent decodes an inbound notification envelope and assigns it an
// event id. Title is the only required field; options, media, and icon are
// all optional.
func ParseEvent(body []byte) (*Event, error) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse notification: %w", err)
	}
	title := strings.TrimSpace(envelope.Title)
	if title == "" {
		return nil, errors.New("parse notification: title required")
	}
	options := envelope.Options
	if string(options) == "null" {
		options = nil
	}
	return &Event{
		ID:      uuid.NewString(),
		Title:   title,
		Media:   strings.TrimSpace(envelope.Media),
		Icon:    strings.TrimSpace(envelope.Icon),
		Options: options,
	}, nil
}

// HasMedia reports whether the event carries an image attachment.
func (e *Event) HasMedia() bool {
	return e != nil && e.Media != ""
}

// Subtitle returns the subtitle from the options object, if any.
func (e *Event) Subtitle() string {
	if e == nil || len(e.Options) == 0 {
		return ""
	}
	return gjson.GetBytes(e.Options, "subtitle").String()
}

// Body returns the body from the options object, if any.
func (e *Event) Body() string {
	if e == nil || len(e.Options) == 0 {
		return ""
	}
	return gjson.GetBytes(e.Options, "body").String()
}
