package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed computes vector embeddings for the given inputs.
func (p *Provider) Embed(ctx context.Context, req *llmrelay.EmbeddingRequest) (*llmrelay.EmbeddingResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}
	if len(req.Inputs) == 0 {
		return nil, &llmrelay.ValidationError{
			Field:  "inputs",
			Reason: "at least one input is required",
			Err:    llmrelay.ErrInvalidRequest,
		}
	}

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	httpReq, err := p.buildHTTPRequest(ctx, "/embeddings", &embeddingRequest{
		Model: req.Model,
		Input: req.Inputs,
	})
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

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("openai: failed to parse embedding response: %w", err)
	}

	// Responses come back indexed; restore input order.
	vectors := make([][]float64, len(req.Inputs))
	for _, item := range apiResp.Data {
		if item.Index >= 0 && item.Index < len(vectors) {
			vectors[item.Index] = item.Embedding
		}
	}

	return &llmrelay.EmbeddingResponse{
		Model:   apiResp.Model,
		Vectors: vectors,
		Usage: llmrelay.Usage{
			InputTokens: apiResp.Usage.PromptTokens,
		},
	}, nil
}
