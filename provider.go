package llmrelay

import (
	"context"
)

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderAnthropic is Anthropic's Claude Messages API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderOpenAI is OpenAI's Responses API
	ProviderOpenAI ProviderID = "openai"

	// ProviderOpenRouter is OpenRouter's chat-completions gateway
	ProviderOpenRouter ProviderID = "openrouter"

	// ProviderOllama is a local Ollama server
	ProviderOllama ProviderID = "ollama"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderOllama, ProviderLorem:
		return true
	default:
		return false
	}
}

// ChatProvider is the minimum capability every provider implements:
// blocking generation plus identity/model checks.
//
// Capabilities beyond chat are modeled as separate interfaces a provider
// either implements or doesn't. Callers assert the capability once when
// building their client, not per call:
//
//	p, _ := llmrelay.NewProvider(llmrelay.ProviderOpenAI, opts)
//	emb, ok := p.(llmrelay.EmbeddingProvider)
//	if !ok { return llmrelay.ErrUnsupportedFeature }
type ChatProvider interface {
	// Generate produces a complete response (blocking).
	// Cancellation: honours ctx and req.Cancel; a pre-cancelled token fails
	// immediately with a CancelledError before any network call.
	Generate(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// StreamingProvider generates streaming responses.
type StreamingProvider interface {
	ChatProvider

	// Stream produces a streaming response. The returned channel emits
	// StreamEvents in arrival order and is closed after the terminal event.
	// Exactly one of EventCompletion or EventError terminates every stream;
	// failures mid-stream become the terminal EventError rather than
	// escaping the channel.
	//
	// The per-stream translator state is owned by the goroutine feeding the
	// channel; consuming a single stream from multiple goroutines is the
	// caller's responsibility to serialize.
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)
}

// EmbeddingRequest asks for vector embeddings of the given inputs.
type EmbeddingRequest struct {
	// Model is the embedding model identifier
	Model string

	// Inputs are the texts to embed
	Inputs []string

	// Cancel is an optional abort signal (see ChatRequest.Cancel)
	Cancel *CancellationToken
}

// EmbeddingResponse carries one vector per input, in input order.
type EmbeddingResponse struct {
	Model   string
	Vectors [][]float64
	Usage   Usage
}

// EmbeddingProvider computes vector embeddings. Not all providers implement
// it; callers check the capability at construction time.
type EmbeddingProvider interface {
	Embed(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error)
}
