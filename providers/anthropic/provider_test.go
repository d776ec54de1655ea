package anthropic

import (
	"testing"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// TestNewProvider_RequiresAPIKey verifies construction fails without a key.
func TestNewProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewProvider(llmrelay.ProviderOptions{})
	if err != llmrelay.ErrInvalidAPIKey {
		t.Errorf("expected ErrInvalidAPIKey, got %v", err)
	}
}

// TestProvider_Capabilities verifies the capability-interface surface:
// streaming is supported, embeddings are not, so callers asserting
// EmbeddingProvider at construction get a clean failure.
func TestProvider_Capabilities(t *testing.T) {
	provider, err := NewProvider(llmrelay.ProviderOptions{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	var chat llmrelay.ChatProvider = provider
	if _, ok := chat.(llmrelay.StreamingProvider); !ok {
		t.Error("expected provider to implement StreamingProvider")
	}
	if _, ok := chat.(llmrelay.EmbeddingProvider); ok {
		t.Error("expected provider to not implement EmbeddingProvider")
	}

	if provider.Name() != llmrelay.ProviderAnthropic {
		t.Errorf("expected provider name anthropic, got %s", provider.Name())
	}
}

// TestSupportsModel covers the claude- prefix check.
func TestSupportsModel(t *testing.T) {
	provider, err := NewProvider(llmrelay.ProviderOptions{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	tests := []struct {
		model     string
		supported bool
	}{
		{"claude-sonnet-4-5", true},
		{"claude-haiku-4-5", true},
		{"gpt-5", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := provider.SupportsModel(tt.model); got != tt.supported {
			t.Errorf("SupportsModel(%q): expected %v, got %v", tt.model, tt.supported, got)
		}
	}
}
