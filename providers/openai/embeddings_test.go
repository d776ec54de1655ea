package openai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// TestEmbed_RestoresInputOrder verifies vectors land at their input index
// even when the API returns data items out of order.
func TestEmbed_RestoresInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected path /embeddings, got %s", r.URL.Path)
		}
		var body embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if len(body.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(body.Input))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "text-embedding-3-small",
			"data": [
				{"index": 1, "embedding": [0.3, 0.4]},
				{"index": 0, "embedding": [0.1, 0.2]}
			],
			"usage": {"prompt_tokens": 6, "total_tokens": 6}
		}`))
	}))
	defer server.Close()

	provider, err := NewProvider(llmrelay.ProviderOptions{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	resp, err := provider.Embed(t.Context(), &llmrelay.EmbeddingRequest{
		Model:  "text-embedding-3-small",
		Inputs: []string{"first", "second"},
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if resp.Model != "text-embedding-3-small" {
		t.Errorf("expected model text-embedding-3-small, got %s", resp.Model)
	}
	if len(resp.Vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(resp.Vectors))
	}
	if resp.Vectors[0][0] != 0.1 {
		t.Errorf("expected first vector to start with 0.1, got %v", resp.Vectors[0][0])
	}
	if resp.Vectors[1][0] != 0.3 {
		t.Errorf("expected second vector to start with 0.3, got %v", resp.Vectors[1][0])
	}
	if resp.Usage.InputTokens != 6 {
		t.Errorf("expected 6 input tokens, got %d", resp.Usage.InputTokens)
	}
}

// TestEmbed_EmptyInputs verifies an empty input slice fails validation
// before any network call.
func TestEmbed_EmptyInputs(t *testing.T) {
	provider, err := NewProvider(llmrelay.ProviderOptions{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.Embed(t.Context(), &llmrelay.EmbeddingRequest{
		Model: "text-embedding-3-small",
	})
	if err == nil {
		t.Fatal("expected error for empty inputs, got nil")
	}

	var valErr *llmrelay.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if valErr.Field != "inputs" {
		t.Errorf("expected field inputs, got %s", valErr.Field)
	}
}

// TestEmbed_PreCancelledToken verifies a cancelled token fails fast without
// reaching the server.
func TestEmbed_PreCancelledToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	provider, err := NewProvider(llmrelay.ProviderOptions{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	token := llmrelay.NewCancellationToken()
	token.Cancel("no longer needed")

	_, err = provider.Embed(t.Context(), &llmrelay.EmbeddingRequest{
		Model:  "text-embedding-3-small",
		Inputs: []string{"hello"},
		Cancel: token,
	})
	if !llmrelay.IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if called {
		t.Error("expected no HTTP request after pre-cancelled token")
	}
}

// TestEmbed_AuthError verifies a 401 maps to the invalid-key sentinel.
func TestEmbed_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer server.Close()

	provider, err := NewProvider(llmrelay.ProviderOptions{
		APIKey:  "bad-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	_, err = provider.Embed(t.Context(), &llmrelay.EmbeddingRequest{
		Model:  "text-embedding-3-small",
		Inputs: []string{"hello"},
	})
	if err == nil {
		t.Fatal("expected error for 401 response, got nil")
	}
	if !llmrelay.IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}
