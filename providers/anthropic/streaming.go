package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// Stream generates a streaming response from Claude. The returned channel
// always ends with exactly one terminal event (Completion or Error) and is
// then closed.
//
// The Messages API frames output as indexed content blocks
// (content_block_start / content_block_delta / content_block_stop); the
// translator keys its per-block state on that index. The SDK accumulator
// rebuilds the final message, so the terminal Completion carries fully
// assembled text, thinking and tool calls.
func (p *Provider) Stream(ctx context.Context, req *llmrelay.ChatRequest) (<-chan llmrelay.StreamEvent, error) {
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

	events := make(chan llmrelay.StreamEvent, 10)

	go func() {
		defer close(events)
		defer stop()

		stream := p.client.Messages.NewStreaming(ctx, apiParams)

		message := anthropic.Message{}
		aggregator := llmrelay.NewToolCallAggregator()

		for stream.Next() {
			event := stream.Current()

			if err := message.Accumulate(event); err != nil {
				events <- llmrelay.ErrorEvent(fmt.Errorf("anthropic: failed to accumulate message: %w", err))
				return
			}

			switch e := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if e.ContentBlock.Type != "tool_use" {
					break
				}
				merged := aggregator.AddDeltaAt(int(e.Index), llmrelay.ToolCall{
					ID:       e.ContentBlock.ID,
					CallType: llmrelay.ToolCallTypeFunction,
					Function: llmrelay.FunctionCall{
						Name: e.ContentBlock.Name,
					},
				})
				if merged != nil {
					events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
				}

			case anthropic.ContentBlockDeltaEvent:
				switch e.Delta.Type {
				case "text_delta":
					if e.Delta.Text != "" {
						events <- llmrelay.TextDeltaEvent(e.Delta.Text)
					}

				case "thinking_delta":
					if e.Delta.Thinking != "" {
						events <- llmrelay.ThinkingDeltaEvent(e.Delta.Thinking)
					}

				case "input_json_delta":
					if e.Delta.PartialJSON == "" {
						break
					}
					merged := aggregator.AddDeltaAt(int(e.Index), llmrelay.ToolCall{
						Function: llmrelay.FunctionCall{
							Arguments: e.Delta.PartialJSON,
						},
					})
					if merged != nil {
						events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
					}

				case "signature_delta":
					// Accumulated into the final message; nothing to emit.
				}

			default:
				// message_start, content_block_stop, message_delta and
				// message_stop carry no per-delta payload here; the
				// accumulator captures their metadata.
			}
		}

		if err := stream.Err(); err != nil {
			events <- llmrelay.ErrorEvent(wrapSDKError(req.Cancel, err))
			return
		}

		events <- llmrelay.CompletionEvent(convertMessage(&message, mapping))
	}()

	return events, nil
}
