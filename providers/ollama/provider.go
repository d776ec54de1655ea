// Package ollama implements the llmrelay provider interfaces for a local
// Ollama server. Ollama streams newline-delimited JSON rather than SSE, and
// some models emit reasoning inline as <think>...</think> tags in content;
// the stream translator handles both.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

const defaultBaseURL = "http://localhost:11434"

func init() {
	_ = llmrelay.RegisterProvider(llmrelay.ProviderOllama, func(opts llmrelay.ProviderOptions) (llmrelay.ChatProvider, error) {
		return NewProvider(opts)
	})
}

// Provider implements ChatProvider, StreamingProvider and EmbeddingProvider
// for Ollama. No API key is required; the server is local.
type Provider struct {
	httpClient *http.Client
	baseURL    string
}

// NewProvider creates a new Ollama provider.
func NewProvider(opts llmrelay.ProviderOptions) (*Provider, error) {
	p := &Provider{
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
	}
	if p.httpClient == nil {
		// Local models can be slow to load on first use.
		p.httpClient = &http.Client{Timeout: 300 * time.Second}
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmrelay.ProviderID {
	return llmrelay.ProviderOllama
}

// SupportsModel returns true for any non-empty model name; the local server
// is the authority on which models exist.
func (p *Provider) SupportsModel(model string) bool {
	return model != ""
}

// Generate produces a non-streaming response from the local server.
func (p *Provider) Generate(ctx context.Context, req *llmrelay.ChatRequest) (*llmrelay.ChatResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	apiReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = false

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	httpReq, err := p.buildHTTPRequest(ctx, "/api/chat", apiReq)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(req.Cancel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportError(req.Cancel, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("ollama: failed to parse response: %w", err)
	}

	return convertResponse(&chatResp), nil
}

func (p *Provider) buildHTTPRequest(ctx context.Context, path string, apiReq interface{}) (*http.Request, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// handleErrorResponse maps Ollama HTTP errors onto the library taxonomy.
// Ollama reports errors as {"error": "message"}.
func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errBody struct {
		Error string `json:"error"`
	}
	message := string(body)
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		message = errBody.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &llmrelay.ModelError{
			Provider: p.Name().String(),
			Reason:   message,
			Err:      llmrelay.ErrInvalidModel,
		}
	case http.StatusBadRequest:
		return &llmrelay.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  false,
			Err:        llmrelay.ErrInvalidRequest,
		}
	default:
		return &llmrelay.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500,
			Err:        llmrelay.ErrProviderUnavailable,
		}
	}
}

func wrapTransportError(token *llmrelay.CancellationToken, err error) error {
	if cancelErr := token.Err(); cancelErr != nil {
		return cancelErr
	}
	if errors.Is(err, context.Canceled) {
		return &llmrelay.CancelledError{}
	}
	// Deadline/timeout is a transport error like any other, not a cancel.
	return &llmrelay.ProviderError{
		Provider:  "ollama",
		Message:   err.Error(),
		Retryable: true,
		Err:       llmrelay.ErrProviderUnavailable,
	}
}
