// Package llm defines the language-model contract shared by the
// conversational reply path and the dedicated field-extraction path.
// The two differ only in sampling configuration, which callers pass
// through per request.
package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a single turn handed to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SamplingConfig controls generation randomness and length.
type SamplingConfig struct {
	Temperature float32
	TopP        float32
	MaxTokens   int32
}

// ChatSampling is the conversational default: creative but bounded.
func ChatSampling() SamplingConfig {
	return SamplingConfig{Temperature: 0.8, TopP: 0.9, MaxTokens: 300}
}

// ExtractionSampling is the dedicated-extraction default: near-greedy so
// the model sticks to the JSON contract.
func ExtractionSampling() SamplingConfig {
	return SamplingConfig{Temperature: 0.1, TopP: 0.9, MaxTokens: 200}
}

// Request carries the system prompt, the transcript, and sampling knobs.
type Request struct {
	System   string
	Messages []ChatMessage
	Sampling SamplingConfig
}

// Response is the raw model output. Parsing it is the caller's problem.
type Response struct {
	Text       string
	StopReason string
}

// Client is a blocking text-generation service.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
