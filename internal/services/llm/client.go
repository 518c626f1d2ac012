package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "Lookout/0.1.0"

// Config captures the runtime settings required to talk to one vision model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client wraps an OpenAI-compatible chat completion endpoint.
//
// The client carries no timeout of its own: per-call deadlines arrive via the
// request context, so the same client can serve both the racing invoker and
// direct callers.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a vision chat client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			Model:   strings.TrimSpace(cfg.Model),
		},
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	return client
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Request describes a single vision chat completion.
//
// Images are data URLs appended to the user message after the text block, in
// order. Schema, when present, is sent as a strict json_schema response format
// so compliant providers constrain their output to it.
type Request struct {
	System     string
	UserText   string
	Images     []string
	SchemaName string
	Schema     json.RawMessage
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.Op, e.FinishReason, e.Refusal, e.Snippet)
}

// Complete issues exactly one chat completion request and returns the message
// content. There is no retry: a failed or slow attempt is the caller's signal
// to fall back, not to try again.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	system := strings.TrimSpace(req.System)
	if system == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if strings.TrimSpace(req.UserText) == "" && len(req.Images) == 0 {
		return "", errors.New("llm complete: user content required")
	}
	if c.cfg.Model == "" {
		return "", errors.New("llm complete: model required")
	}

	parts := make([]contentPart, 0, len(req.Images)+1)
	if text := strings.TrimSpace(req.UserText); text != "" {
		parts = append(parts, contentPart{Type: "text", Text: text})
	}
	for _, image := range req.Images {
		image = strings.TrimSpace(image)
		if image == "" {
			continue
		}
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: image}})
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: parts},
		},
		Temperature: 0,
	}
	if len(req.Schema) > 0 {
		name := strings.TrimSpace(req.SchemaName)
		if name == "" {
			name = "response"
		}
		payload.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   name,
				Strict: true,
				Schema: req.Schema,
			},
		}
	}

	parsed, body, err := c.sendChatRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	content, finishReason := parsed.payload()
	if content == "" {
		if len(parsed.Choices) == 0 {
			return "", errors.New("llm complete: empty choices")
		}
		return "", &emptyContentError{
			Op:           "llm complete",
			FinishReason: finishReason,
			Refusal:      parsed.refusal(),
			Snippet:      payloadSnippet(string(body)),
		}
	}
	return content, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatMessage content is a plain string for the system role and a list of
// contentPart values for the multimodal user role.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

type chatChoice struct {
	Message      assistantMessage `json:"message"`
	Delta        assistantMessage `json:"delta"`
	Text         string           `json:"text"`
	FinishReason string           `json:"finish_reason"`
}

type assistantMessage struct {
	Content      string        `json:"content"`
	Refusal      string        `json:"refusal"`
	ToolCalls    []toolCall    `json:"tool_calls"`
	FunctionCall *toolFunction `json:"function_call"`
}

type toolCall struct {
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Arguments string `json:"arguments"`
}

// payload returns the first usable content across choices along with the
// first finish reason seen. Providers vary in where they put the answer:
// the standard message, a streaming delta emitted even with stream off, the
// legacy completion text, or tool call arguments when the model answered
// through a tool.
func (r chatResponse) payload() (string, string) {
	var finishReason string
	for _, choice := range r.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if content := choice.payload(); content != "" {
			return content, finishReason
		}
	}
	return "", finishReason
}

func (r chatResponse) refusal() string {
	for _, choice := range r.Choices {
		for _, msg := range []assistantMessage{choice.Message, choice.Delta} {
			if refusal := strings.TrimSpace(msg.Refusal); refusal != "" {
				return refusal
			}
		}
	}
	return ""
}

func (ch chatChoice) payload() string {
	candidates := []string{ch.Message.Content, ch.Delta.Content, ch.Text}
	if fc := ch.Message.FunctionCall; fc != nil {
		candidates = append(candidates, fc.Arguments)
	}
	if fc := ch.Delta.FunctionCall; fc != nil {
		candidates = append(candidates, fc.Arguments)
	}
	for _, call := range ch.Message.ToolCalls {
		candidates = append(candidates, call.Function.Arguments)
	}
	for _, call := range ch.Delta.ToolCalls {
		candidates = append(candidates, call.Function.Arguments)
	}
	for _, candidate := range candidates {
		if content := strings.TrimSpace(candidate); content != "" {
			return content
		}
	}
	return ""
}

func (c *Client) sendChatRequest(ctx context.Context, payload chatRequest) (chatResponse, []byte, error) {
	var parsed chatResponse
	endpoint, err := c.endpoint()
	if err != nil {
		return parsed, nil, fmt.Errorf("llm request: build url: %w", err)
	}
	body, err := c.postJSON(ctx, endpoint, payload)
	if err != nil {
		return parsed, body, err
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if parsed.Error != nil {
		return parsed, body, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	return parsed, body, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// Local endpoints (Ollama, llama.cpp) run keyless; only send the header
	// when a key is configured.
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return body, &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// endpoint resolves the chat completions URL. Operators sometimes configure
// the full path rather than the API root, so a base that already ends in
// /chat/completions is used verbatim.
func (c *Client) endpoint() (string, error) {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if base == "" {
		return "", errors.New("base url required")
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base, nil
	}
	return url.JoinPath(base, "chat", "completions")
}

// DecodeLLMJSON decodes JSON from model output, tolerating the wrappers
// models habitually add: markdown code fences and prose around the object.
func DecodeLLMJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}
	if extracted := extractJSONBlock(trimmed); extracted != "" && extracted != trimmed {
		if retryErr := json.Unmarshal([]byte(extracted), target); retryErr != nil {
			return fmt.Errorf("%w (sanitized payload snippet: %s)", retryErr, payloadSnippet(extracted))
		}
		return nil
	}
	return fmt.Errorf("%w (payload snippet: %s)", directErr, payloadSnippet(trimmed))
}

// extractJSONBlock returns the outermost JSON object or array in content,
// unwrapping one markdown code fence first when present. It returns ""
// when nothing resembling JSON is found.
func extractJSONBlock(content string) string {
	content = strings.TrimSpace(content)
	if fenced, ok := strings.CutPrefix(content, "```"); ok {
		fenced = strings.TrimLeft(fenced, " \t\r\n")
		if len(fenced) >= 4 && strings.EqualFold(fenced[:4], "json") {
			fenced = strings.TrimLeft(fenced[4:], " \t\r\n")
		}
		if end := strings.LastIndex(fenced, "```"); end >= 0 {
			fenced = fenced[:end]
		}
		content = strings.TrimSpace(fenced)
	}
	if content == "" {
		return ""
	}
	if content[0] == '{' || content[0] == '[' {
		return content
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(content, pair[0])
		if start < 0 {
			continue
		}
		if end := strings.LastIndex(content, pair[1]); end > start {
			return strings.TrimSpace(content[start : end+1])
		}
	}
	return ""
}

// payloadSnippet condenses content onto one line and truncates it so raw
// model output can ride along in error messages.
func payloadSnippet(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "<empty>"
	}
	clean := strings.Join(fields, " ")
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
