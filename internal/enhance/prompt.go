package enhance

import (
	"encoding/json"
	"fmt"

	"lookout/internal/services/llm"
	"lookout/internal/snapshot"
)

// systemRules is the fixed instruction block sent with every request. The
// operator's style text never replaces it, only follows it.
const systemRules = `You write notification text for home security camera events based on the attached snapshot images.

Rules:
- Never invent names. If the metadata contains a token of the form "Maybe: <name>", use that name with the "Maybe:" prefix stripped; otherwise refer to people and animals in generic terms (a person, a dog).
- Respond with exactly one JSON object containing exactly three string fields: "title", "subtitle", "body". No other fields and no text outside the JSON object.
- The three fields must not repeat each other; each one adds information the others do not.
- Length limits are mandatory: title at most 32 characters, subtitle at most 32 characters, body at most 80 characters.`

// schemaFooter restates the output contract after the style text so it is
// the last instruction the model reads.
const schemaFooter = `Output schema (strict): {"title": string, max 32 chars; "subtitle": string, max 32 chars; "body": string, max 80 chars}. Respond with the JSON object only.`

// BuildRequest assembles the inference request for one event. The operator
// style text is echoed verbatim between the rules and the schema footer; it
// is never validated or escaped. The user message carries the serialized
// metadata followed by the ordered snapshot images.
func BuildRequest(userStyle string, images []snapshot.Image, metadata map[string]any) (llm.Request, error) {
	encodedMeta, err := json.Marshal(metadata)
	if err != nil {
		return llm.Request{}, fmt.Errorf("encode prompt metadata: %w", err)
	}

	system := systemRules
	if userStyle != "" {
		system += "\n\n" + userStyle
	}
	system += "\n\n" + schemaFooter

	refs := make([]string, 0, len(images))
	for _, image := range images {
		refs = append(refs, image.DataURL)
	}

	return llm.Request{
		System:     system,
		UserText:   string(encodedMeta),
		Images:     refs,
		SchemaName: responseSchemaName,
		Schema:     ResponseSchemaJSON,
	}, nil
}
