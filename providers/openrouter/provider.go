// Package openrouter implements the llmrelay provider interfaces for
// OpenRouter's unified API. OpenRouter proxies requests to multiple LLM
// vendors using an OpenAI-compatible chat-completions format, including the
// chat-completions SSE streaming dialect ("data:" frames terminated by a
// literal "data: [DONE]" line).
//
// Reasoning support: depending on the routed model, thinking content
// arrives in a `reasoning` / `reasoning_content` delta field, in
// `reasoning_details`, or inline as <think>...</think> tags inside ordinary
// content. The stream translator normalizes all three.
package openrouter

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

	"github.com/tidwall/sjson"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

func init() {
	_ = llmrelay.RegisterProvider(llmrelay.ProviderOpenRouter, func(opts llmrelay.ProviderOptions) (llmrelay.ChatProvider, error) {
		return NewProvider(opts)
	})
}

// Provider implements ChatProvider and StreamingProvider for OpenRouter.
type Provider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewProvider creates a new OpenRouter provider.
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
	return llmrelay.ProviderOpenRouter
}

// SupportsModel returns true if this provider supports the given model.
// OpenRouter uses "provider/model" format (e.g., "anthropic/claude-sonnet-4-5")
// plus special models like "openrouter/auto".
func (p *Provider) SupportsModel(model string) bool {
	return strings.Contains(model, "/")
}

// Generate produces a non-streaming response from OpenRouter.
func (p *Provider) Generate(ctx context.Context, req *llmrelay.ChatRequest) (*llmrelay.ChatResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	if !p.SupportsModel(req.Model) {
		return nil, &llmrelay.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by OpenRouter (must be in 'provider/model' format)",
			Err:      llmrelay.ErrInvalidModel,
		}
	}

	apiReq, mapping, err := buildChatCompletionRequest(req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = false

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	httpReq, err := p.buildHTTPRequest(ctx, apiReq, req)
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

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("openrouter: failed to parse response: %w", err)
	}

	return convertResponse(&chatResp, mapping), nil
}

// buildHTTPRequest marshals the API request and applies request-body
// patches that have no typed field (the web plugin block).
func (p *Provider) buildHTTPRequest(ctx context.Context, apiReq *chatCompletionRequest, req *llmrelay.ChatRequest) (*http.Request, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: failed to marshal request: %w", err)
	}

	if req.Params != nil && req.Params.WebSearch != nil && *req.Params.WebSearch {
		body, err = sjson.SetBytes(body, "plugins.0.id", "web")
		if err != nil {
			return nil, fmt.Errorf("openrouter: failed to enable web plugin: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

// handleErrorResponse maps OpenRouter HTTP errors onto the library taxonomy.
func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch resp.StatusCode {
	case 401, 403:
		return &llmrelay.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Err:        llmrelay.ErrInvalidAPIKey,
		}
	case 429:
		return &llmrelay.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  true,
			Err:        llmrelay.ErrRateLimited,
		}
	case 404:
		return &llmrelay.ModelError{
			Provider: p.Name().String(),
			Reason:   "model not found on OpenRouter - verify the model name",
			Err:      llmrelay.ErrInvalidModel,
		}
	default:
		return &llmrelay.ProviderError{
			Provider:   p.Name().String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == 408,
			Err:        llmrelay.ErrProviderUnavailable,
		}
	}
}

// wrapTransportError distinguishes caller-initiated aborts from genuine
// transport failures so IsCancelled works on the surfaced error.
func wrapTransportError(provider string, token *llmrelay.CancellationToken, err error) error {
	if token.IsCancelled() {
		return &llmrelay.CancelledError{Reason: token.Reason()}
	}
	if errors.Is(err, context.Canceled) {
		return &llmrelay.CancelledError{Reason: err.Error()}
	}
	// Deadline/timeout is a transport error like any other, not a cancel.
	return &llmrelay.ProviderError{
		Provider:  provider,
		Message:   err.Error(),
		Retryable: true,
		Err:       llmrelay.ErrProviderUnavailable,
	}
}
