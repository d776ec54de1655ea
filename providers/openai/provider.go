// Package openai implements the llmrelay provider interfaces for OpenAI's
// Responses API. Unlike the chat-completions dialect OpenRouter speaks, the
// Responses API streams typed event envelopes: every SSE frame carries a
// "type" field (response.output_text.delta, response.output_item.added,
// response.completed, ...) and the translator routes on it.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

const defaultBaseURL = "https://api.openai.com/v1"

func init() {
	_ = llmrelay.RegisterProvider(llmrelay.ProviderOpenAI, func(opts llmrelay.ProviderOptions) (llmrelay.ChatProvider, error) {
		return NewProvider(opts)
	})
}

// Provider implements ChatProvider, StreamingProvider and EmbeddingProvider
// for OpenAI.
type Provider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewProvider creates a new OpenAI provider.
func NewProvider(opts llmrelay.ProviderOptions) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, llmrelay.ErrInvalidAPIKey
	}

	p := &Provider{
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmrelay.ProviderID {
	return llmrelay.ProviderOpenAI
}

// SupportsModel returns true if this provider supports the given model.
func (p *Provider) SupportsModel(model string) bool {
	for _, prefix := range []string{"gpt-", "o1", "o3", "o4", "chatgpt-", "text-embedding-"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Generate produces a non-streaming response from the Responses API.
func (p *Provider) Generate(ctx context.Context, req *llmrelay.ChatRequest) (*llmrelay.ChatResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	apiReq, mapping, err := buildResponsesRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	httpReq, err := p.buildHTTPRequest(ctx, "/responses", apiReq)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(p.Name().String(), req.Cancel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportError(p.Name().String(), req.Cancel, err)
	}

	var apiResp responsesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("openai: failed to parse response: %w", err)
	}

	return convertResponse(&apiResp, mapping), nil
}

func (p *Provider) buildHTTPRequest(ctx context.Context, path string, apiReq interface{}) (*http.Request, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

// handleErrorResponse maps OpenAI HTTP errors onto the library taxonomy.
func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errBody struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	message := string(body)
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
		message = errBody.Error.Message
	}

	provider := p.Name().String()
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmrelay.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  false,
			Err:        llmrelay.ErrInvalidAPIKey,
		}
	case http.StatusTooManyRequests:
		return &llmrelay.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  true,
			Err:        llmrelay.ErrRateLimited,
		}
	case http.StatusNotFound:
		return &llmrelay.ModelError{
			Model:    errBody.Error.Code,
			Provider: provider,
			Reason:   message,
			Err:      llmrelay.ErrInvalidModel,
		}
	case http.StatusBadRequest:
		return &llmrelay.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  false,
			Err:        llmrelay.ErrInvalidRequest,
		}
	default:
		return &llmrelay.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout,
			Err:        llmrelay.ErrProviderUnavailable,
		}
	}
}

func wrapTransportError(provider string, token *llmrelay.CancellationToken, err error) error {
	if cancelErr := token.Err(); cancelErr != nil {
		return cancelErr
	}
	if errors.Is(err, context.Canceled) {
		return &llmrelay.CancelledError{}
	}
	// Deadline/timeout is a transport error like any other, not a cancel.
	return &llmrelay.ProviderError{
		Provider:  provider,
		Message:   err.Error(),
		Retryable: true,
		Err:       llmrelay.ErrProviderUnavailable,
	}
}
