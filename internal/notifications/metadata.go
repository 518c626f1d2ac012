package notifications

import "github.com/tidwall/gjson"

// maybeInstruction rides along with the original message so the model knows
// how to treat tentative identity tokens embedded by upstream detectors.
const maybeInstruction = `If the original message contains a token of the form "Maybe: <name>", that name is confirmed and may be used directly.`

// DetectionID returns the detection identifier for the event. The recorded
// event's own detectionId wins; the first entry of its detections list is
// the fallback. The precedence order is load-bearing for matching the full
// frame to the right detection and must not be reordered.
func (e *Event) DetectionID() string {
	if e == nil || len(e.Options) == 0 {
		return ""
	}
	if id := gjson.GetBytes(e.Options, "recordedEvent.data.detectionId"); id.Exists() {
		return id.String()
	}
	if id := gjson.GetBytes(e.Options, "recordedEvent.data.detections.0.id"); id.Exists() {
		return id.String()
	}
	return ""
}

// RecordedEventID returns the recorder's own identifier for the event, when
// the upstream detector attached one. Passed along on full-frame fetches so
// the recorder can disambiguate detections that share an id.
func (e *Event) RecordedEventID() string {
	if e == nil || len(e.Options) == 0 {
		return ""
	}
	return gjson.GetBytes(e.Options, "recordedEvent.id").String()
}

// SourceID returns the identifier of the device that produced the event.
// The recorded event's sourceId wins over the top-level options data block.
func (e *Event) SourceID() string {
	if e == nil || len(e.Options) == 0 {
		return ""
	}
	if id := gjson.GetBytes(e.Options, "recordedEvent.data.sourceId"); id.Exists() {
		return id.String()
	}
	if id := gjson.GetBytes(e.Options, "data.sourceId"); id.Exists() {
		return id.String()
	}
	return ""
}

// PromptMetadata assembles the metadata object serialized into the user
// message. When includeOriginal is set, the original notification text is
// embedded together with the instruction for handling "Maybe:" tokens.
func (e *Event) PromptMetadata(includeOriginal bool) map[string]any {
	meta := map[string]any{}
	if id := e.SourceID(); id != "" {
		meta["sourceId"] = id
	}
	if id := e.DetectionID(); id != "" {
		meta["detectionId"] = id
	}
	if includeOriginal {
		original := map[string]string{"title": e.Title}
		if subtitle := e.Subtitle(); subtitle != "" {
			original["subtitle"] = subtitle
		}
		if body := e.Body(); body != "" {
			original["body"] = body
		}
		meta["originalMessage"] = original
		meta["instruction"] = maybeInstruction
	}
	return meta
}
