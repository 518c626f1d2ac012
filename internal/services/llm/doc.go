// Package llm provides an OpenAI-compatible vision chat client.
//
// The client speaks the chat completions wire format used by OpenRouter,
// OpenAI, and local runtimes such as Ollama: a system message carrying the
// instructions, a multimodal user message carrying text plus base64 image
// data URLs, and a strict json_schema response format describing the
// expected reply.
//
// # Single Attempt
//
// Complete never retries. Notification enhancement is latency-bound: by the
// time a second attempt could finish, the notification should already have
// been delivered unenhanced. Callers treat any failure as a fallback signal.
//
// # Response Tolerance
//
// Providers differ in how they shape successful responses (message vs.
// delta, tool-call arguments, legacy text fields) and in how models wrap
// JSON (code fences, leading prose). The extraction and DecodeLLMJSON
// helpers absorb those quirks so callers see plain content.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Complete: issue one vision completion.
// DecodeLLMJSON: decode model output into a struct.
package llm
