package llm

import "context"

// Message is one turn of a conversation sent upstream.
type Message struct {
	Role    string
	Content string
}

// Request contains chat completion parameters
type Request struct {
	System      string
	Messages    []Message
	Images      []string // data URIs attached to the final user message
	MaxTokens   int
	Temperature float64
}

// Response contains an LLM completion result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// StreamFunc receives one content delta from a streamed completion.
// Returning an error aborts the stream.
type StreamFunc func(delta string) error

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Chat produces a complete response in one call. Required for
	// image-bearing requests, whose upstream path cannot stream.
	Chat(ctx context.Context, req Request, model string) (*Response, error)

	// ChatStream delivers the response incrementally through fn and
	// returns the assembled result.
	ChatStream(ctx context.Context, req Request, model string, fn StreamFunc) (*Response, error)
}
