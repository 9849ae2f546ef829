// Package llm provides a small client for OpenAI-compatible chat completion
// endpoints that answer in JSON.
//
// The title parser uses it to turn free-form release names into structured
// fields. CompleteJSON sends a system and user prompt and returns the raw JSON
// text; DecodeLLMJSON tolerates code fences and prose around the object.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, empty completions, and network
// timeouts with exponential backoff (base 1s, max 10s, 3 attempts by default).
// Retry-After headers are honoured. Context cancellation aborts immediately.
package llm
