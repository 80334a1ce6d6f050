// Package llm implements the chat completion client used by chat sessions.
//
// Requests follow the OpenAI-compatible chat completions shape. Calls pass
// through a token-bucket limiter, resty retries driven by the retryablehttp
// policy (connection errors, 429, 5xx), and a circuit breaker that ignores
// client errors.
package llm
