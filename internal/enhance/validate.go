package enhance

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"lookout/internal/notifications"
	"lookout/internal/services"
	"lookout/internal/services/llm"
)

const (
	responseSchemaName = "notification_text"
	responseSchemaURL  = "notification_text.schema.json"
)

// ResponseSchemaJSON is the strict output schema. It rides along on every
// request for providers that support schema-constrained decoding, and the
// compiled form validates whatever comes back. Length ceilings are left out
// on purpose: they are a quality instruction to the model, not a contract
// the pipeline polices.
var ResponseSchemaJSON = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"subtitle": {"type": "string"},
		"body": {"type": "string"}
	},
	"required": ["title", "subtitle", "body"],
	"additionalProperties": false
}`)

var responseSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(responseSchemaURL, strings.NewReader(string(ResponseSchemaJSON))); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile(responseSchemaURL)
	if err != nil {
		panic(err)
	}
	return schema
}()

// ValidateResponse decodes the provider's content and checks it against the
// output schema. Unparseable content is a call failure; parseable content of
// the wrong shape is a schema failure. Over-length field values pass.
func ValidateResponse(content string) (*notifications.Fields, error) {
	var payload any
	if err := llm.DecodeLLMJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrCall, "enhance", "decode", "provider returned unparseable content", err)
	}
	if err := responseSchema.Validate(payload); err != nil {
		return nil, services.Wrap(services.ErrSchema, "enhance", "validate", "provider response has wrong shape", err)
	}
	object := payload.(map[string]any)
	return &notifications.Fields{
		Title:    object["title"].(string),
		Subtitle: object["subtitle"].(string),
		Body:     object["body"].(string),
	}, nil
}
