// Package lorem is a mock provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys. Stream
// pacing and cutoff behavior are controlled by the model name (lorem-fast,
// lorem-slow, lorem-medium, lorem-cutoff).
package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

func init() {
	_ = llmrelay.RegisterProvider(llmrelay.ProviderLorem, func(opts llmrelay.ProviderOptions) (llmrelay.ChatProvider, error) {
		return NewProvider(), nil
	})
}

// Provider implements ChatProvider and StreamingProvider with generated
// lorem ipsum content.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() llmrelay.ProviderID {
	return llmrelay.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Generate produces a complete lorem ipsum response after a short simulated
// processing delay.
func (p *Provider) Generate(ctx context.Context, req *llmrelay.ChatRequest) (*llmrelay.ChatResponse, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	if !p.SupportsModel(req.Model) {
		return nil, &llmrelay.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      llmrelay.ErrInvalidModel,
		}
	}

	params := req.Params
	if params == nil {
		params = &llmrelay.RequestParams{}
	}
	maxTokens := params.GetMaxTokens(4096)

	ctx, stop := req.Cancel.Bind(ctx)
	defer stop()

	// Simulate a blocking API call.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		if err := req.Cancel.Err(); err != nil {
			return nil, err
		}
		return nil, ctx.Err()
	}

	// Estimate: 1 token is roughly 4 characters.
	text := p.generateText(maxTokens * 4)

	return &llmrelay.ChatResponse{
		Text:       text,
		Model:      req.Model,
		StopReason: "end_turn",
		Usage: llmrelay.Usage{
			InputTokens:  p.estimateTokens(req.Messages),
			OutputTokens: len(strings.Fields(text)),
		},
		ProviderMetadata: map[string]interface{}{
			"mock":     true,
			"provider": "lorem",
		},
	}, nil
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second
// - lorem-fast: 30 words/second
// - lorem-medium and default: 10 words/second
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// isCutoffModel returns true if the model should simulate max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

// Stream produces a streaming lorem ipsum response, rotating through block
// types: text (20 words) → thinking (20 words, if enabled) → tool call (if
// tools requested) → repeat. Speed varies with the model name. The channel
// always ends with exactly one terminal event and is then closed.
func (p *Provider) Stream(ctx context.Context, req *llmrelay.ChatRequest) (<-chan llmrelay.StreamEvent, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	if !p.SupportsModel(req.Model) {
		return nil, &llmrelay.ModelError{
			Model:    req.Model,
			Provider: p.Name().String(),
			Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
			Err:      llmrelay.ErrInvalidModel,
		}
	}

	params := req.Params
	if params == nil {
		params = &llmrelay.RequestParams{}
	}
	maxTokens := params.GetMaxTokens(4096)
	thinkingEnabled := params.ThinkingRequested()
	toolsEnabled := len(params.Tools) > 0

	ctx, stop := req.Cancel.Bind(ctx)

	events := make(chan llmrelay.StreamEvent, 10)

	go func() {
		defer close(events)
		defer stop()

		var (
			aggregator   = llmrelay.NewToolCallAggregator()
			response     = &llmrelay.ChatResponse{Model: req.Model, StopReason: "end_turn"}
			outputTokens int
			blockIndex   int
			toolIndex    int
		)

		fail := func(err error) {
			if cancelErr := req.Cancel.Err(); cancelErr != nil {
				err = cancelErr
			}
			events <- llmrelay.ErrorEvent(err)
		}

		for outputTokens < maxTokens && blockIndex <= 100 {
			remaining := maxTokens - outputTokens

			switch {
			case blockIndex%3 == 0 || (blockIndex%3 == 1 && !thinkingEnabled):
				words, cutoff, err := p.streamText(ctx, events, response, min(20, remaining), req.Model)
				if err != nil {
					fail(err)
					return
				}
				outputTokens += words
				blockIndex++
				if cutoff {
					response.StopReason = "max_tokens"
					outputTokens = maxTokens
				}

			case blockIndex%3 == 1:
				words, err := p.streamThinking(ctx, events, response, min(20, remaining), req.Model)
				if err != nil {
					fail(err)
					return
				}
				outputTokens += words
				blockIndex++

			case toolsEnabled:
				if remaining < 20 {
					outputTokens = maxTokens
					break
				}
				tool := params.Tools[toolIndex%len(params.Tools)]
				tokens, err := p.streamToolCall(ctx, events, aggregator, blockIndex, &tool, req.Model)
				if err != nil {
					fail(err)
					return
				}
				outputTokens += tokens
				blockIndex++
				toolIndex++

			default:
				blockIndex++
			}
		}

		if outputTokens >= maxTokens && response.StopReason == "end_turn" && !toolsEnabled {
			response.StopReason = "max_tokens"
		}

		response.ToolCalls = aggregator.CompletedCalls()
		if len(response.ToolCalls) > 0 {
			response.StopReason = "tool_use"
		}
		response.Usage = llmrelay.Usage{
			InputTokens:  p.estimateTokens(req.Messages),
			OutputTokens: outputTokens,
		}
		response.ProviderMetadata = map[string]interface{}{
			"mock":     true,
			"provider": "lorem",
		}

		events <- llmrelay.CompletionEvent(response)
	}()

	return events, nil
}

// streamText streams one text block word by word. Returns (word count,
// cutoff flag, error). Cutoff models generate 50% extra and stop at the
// budget to simulate hitting max_tokens.
func (p *Provider) streamText(ctx context.Context, events chan<- llmrelay.StreamEvent, response *llmrelay.ChatResponse, budget int, model string) (int, bool, error) {
	target := budget
	if isCutoffModel(model) {
		target = budget + budget/2
	}

	words := strings.Fields(p.generateTextWords(target))
	delay := getStreamDelay(model)

	sent := 0
	for _, word := range words {
		select {
		case <-ctx.Done():
			return sent, false, ctx.Err()
		default:
		}

		if isCutoffModel(model) && sent >= budget {
			return sent, true, nil
		}

		delta := word + " "
		response.Text += delta
		events <- llmrelay.TextDeltaEvent(delta)

		time.Sleep(delay)
		sent++
	}

	return sent, false, nil
}

// streamThinking streams one thinking block word by word.
func (p *Provider) streamThinking(ctx context.Context, events chan<- llmrelay.StreamEvent, response *llmrelay.ChatResponse, budget int, model string) (int, error) {
	words := strings.Fields(p.generateTextWords(budget))
	delay := getStreamDelay(model)

	sent := 0
	for _, word := range words {
		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		default:
		}

		delta := word + " "
		response.Thinking += delta
		events <- llmrelay.ThinkingDeltaEvent(delta)

		time.Sleep(delay)
		sent++
	}

	return sent, nil
}

// streamToolCall streams a mock call to one of the requested tools,
// fragmenting the arguments character by character the way real providers
// fragment input JSON.
func (p *Provider) streamToolCall(ctx context.Context, events chan<- llmrelay.StreamEvent, aggregator *llmrelay.ToolCallAggregator, blockIndex int, tool *llmrelay.Tool, model string) (int, error) {
	input := mockToolInput(tool)

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tool input: %w", err)
	}
	jsonStr := string(jsonBytes)

	callID := fmt.Sprintf("toolu_%s_%d", tool.Function.Name, blockIndex)
	merged := aggregator.AddDelta(llmrelay.ToolCall{
		ID:       callID,
		CallType: llmrelay.ToolCallTypeFunction,
		Function: llmrelay.FunctionCall{Name: tool.Function.Name},
	})
	events <- llmrelay.ToolCallDeltaEvent(merged)

	delay := getStreamDelay(model) / 10 // JSON streams faster than words

	for i, char := range jsonStr {
		select {
		case <-ctx.Done():
			return i / 4, ctx.Err()
		default:
		}

		merged = aggregator.AddDelta(llmrelay.ToolCall{
			ID:       callID,
			Function: llmrelay.FunctionCall{Arguments: string(char)},
		})
		events <- llmrelay.ToolCallDeltaEvent(merged)

		time.Sleep(delay)
	}

	// Rough: 1 token per 4 chars of JSON.
	return len(jsonStr) / 4, nil
}

func mockToolInput(tool *llmrelay.Tool) map[string]interface{} {
	switch tool.Function.Name {
	case "search":
		return map[string]interface{}{"query": "lorem ipsum dolor sit amet"}
	case "text_editor":
		return map[string]interface{}{
			"command": "str_replace",
			"path":    "/path/to/file.txt",
			"old_str": "consectetur",
			"new_str": "adipiscing",
		}
	case "bash":
		return map[string]interface{}{"command": "echo 'lorem ipsum'"}
	default:
		return map[string]interface{}{"data": "mock input for " + tool.Function.Name}
	}
}

// generateText generates lorem ipsum text with approximately targetChars characters.
func (p *Provider) generateText(targetChars int) string {
	var sb strings.Builder
	for sb.Len() < targetChars {
		sb.WriteString(p.generator.Paragraph(3, 5))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// generateTextWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages using
// word count as a rough approximation.
func (p *Provider) estimateTokens(messages []llmrelay.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Content))
	}
	return total
}
