// Package llm defines the language-model provider interface used for
// grooming. Providers are interchangeable behind this interface.
package llm

import "context"

// CompletionRequest is the input to a provider's Complete() call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Model        string // override provider default if set
}

// CompletionResponse is returned by Complete().
type CompletionResponse struct {
	Text         string
	StopReason   string
	InputTokens  int
	OutputTokens int
}

// Provider is the core abstraction for language model backends.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	ModelID() string
}
