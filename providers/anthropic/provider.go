// Package anthropic implements the llmrelay provider interfaces for
// Anthropic (Claude) models via the official SDK. The SDK owns the HTTP and
// SSE transport; this package translates between the library's normalized
// request/event model and the Messages API block model
// (content_block_start / content_block_delta / content_block_stop).
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

func init() {
	_ = llmrelay.RegisterProvider(llmrelay.ProviderAnthropic, func(opts llmrelay.ProviderOptions) (llmrelay.ChatProvider, error) {
		return NewProvider(opts)
	})
}

// Provider implements ChatProvider and StreamingProvider for Anthropic.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider.
func NewProvider(opts llmrelay.ProviderOptions) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, llmrelay.ErrInvalidAPIKey
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	client := anthropic.NewClient(reqOpts...)

	return &Provider{client: &client}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmrelay.ProviderID {
	return llmrelay.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

// Generate produces a non-streaming response from Claude.
func (p *Provider) Generate(ctx context.Context, req *llmrelay.ChatRequest) (*llmrelay.ChatResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	if !p.SupportsModel(req.Model) {
		return nil, &llmrelay.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Anthropic (must start with 'claude-')",
			Err:      llmrelay.ErrInvalidModel,
		}
	}

	apiParams, mapping, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, wrapSDKError(req.Cancel, err)
	}

	return convertMessage(message, mapping), nil
}

// wrapSDKError maps SDK call failures onto the library taxonomy.
func wrapSDKError(token *llmrelay.CancellationToken, err error) error {
	if cancelErr := token.Err(); cancelErr != nil {
		return cancelErr
	}
	if errors.Is(err, context.Canceled) {
		return &llmrelay.CancelledError{}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return &llmrelay.ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Retryable:  false,
				Err:        llmrelay.ErrInvalidAPIKey,
			}
		case 429:
			return &llmrelay.ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Retryable:  true,
				Err:        llmrelay.ErrRateLimited,
			}
		case 404:
			return &llmrelay.ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Retryable:  false,
				Err:        llmrelay.ErrInvalidModel,
			}
		case 400:
			return &llmrelay.ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Retryable:  false,
				Err:        llmrelay.ErrInvalidRequest,
			}
		default:
			return &llmrelay.ProviderError{
				Provider:   "anthropic",
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Error(),
				Retryable:  apiErr.StatusCode >= 500,
				Err:        llmrelay.ErrProviderUnavailable,
			}
		}
	}

	// Deadline/timeout is a transport error like any other, not a cancel.
	return &llmrelay.ProviderError{
		Provider:  "anthropic",
		Message:   err.Error(),
		Retryable: true,
		Err:       llmrelay.ErrProviderUnavailable,
	}
}
