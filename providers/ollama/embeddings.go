package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model           string      `json:"model"`
	Embeddings      [][]float64 `json:"embeddings"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
}

// Embed computes vector embeddings via /api/embed.
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

	httpReq, err := p.buildHTTPRequest(ctx, "/api/embed", &embedRequest{
		Model: req.Model,
		Input: req.Inputs,
	})
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

	var apiResp embedResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("ollama: failed to parse embedding response: %w", err)
	}

	return &llmrelay.EmbeddingResponse{
		Model:   apiResp.Model,
		Vectors: apiResp.Embeddings,
		Usage: llmrelay.Usage{
			InputTokens: apiResp.PromptEvalCount,
		},
	}, nil
}
