package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	llmrelay "github.com/relaylabs/relay-llm-go"
	"github.com/relaylabs/relay-llm-go/internal/streamio"
)

// Stream sends a streaming chat completion request and returns a channel of
// normalized events. The channel always ends with exactly one terminal event
// (Completion or Error) and is then closed.
func (p *Provider) Stream(ctx context.Context, req *llmrelay.ChatRequest) (<-chan llmrelay.StreamEvent, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	apiReq, mapping, err := buildChatCompletionRequest(req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = true

	ctx, cancel := req.Cancel.Bind(ctx)

	httpReq, err := p.buildHTTPRequest(ctx, apiReq, req)
	if err != nil {
		cancel()
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, wrapTransportError("openrouter", req.Cancel, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		defer cancel()
		return nil, p.handleErrorResponse(resp)
	}

	events := make(chan llmrelay.StreamEvent, 10)
	go func() {
		defer close(events)
		defer cancel()
		defer resp.Body.Close()
		p.translateStream(resp.Body, req.Cancel, mapping, events)
	}()

	return events, nil
}

// translateStream reads the SSE body and emits normalized events. Exactly one
// terminal event is sent before returning.
func (p *Provider) translateStream(body io.Reader, token *llmrelay.CancellationToken, mapping *llmrelay.ToolNameMapping, events chan<- llmrelay.StreamEvent) {
	var (
		decoder    streamio.UTF8Decoder
		frames     streamio.FrameParser
		thinkSplit streamio.ThinkSplitter
		aggregator = llmrelay.NewToolCallAggregator()
		response   = &llmrelay.ChatResponse{}
		sawChunk   bool
	)

	emitContent := func(content string) {
		// Some models interleave <think> tags in the content stream
		// instead of using a reasoning field.
		text, thinking := thinkSplit.Split(content)
		if thinking != "" {
			response.Thinking += thinking
			events <- llmrelay.ThinkingDeltaEvent(thinking)
		}
		if text != "" {
			response.Text += text
			events <- llmrelay.TextDeltaEvent(text)
		}
	}

	handleFrame := func(frame streamio.Frame) bool {
		if frame.Done {
			return true
		}

		// Error payloads arrive mid-stream as {"error": {...}}.
		if errField := gjson.GetBytes(frame.Data, "error"); errField.Exists() {
			msg := errField.Get("message").String()
			if msg == "" {
				msg = errField.Raw
			}
			events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
				Provider:  "openrouter",
				Message:   msg,
				Retryable: false,
				Err:       llmrelay.ErrProviderUnavailable,
			})
			return true
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal(frame.Data, &chunk); err != nil {
			// Malformed frames are dropped, same as the frame parser
			// drops malformed lines.
			return false
		}
		sawChunk = true

		if chunk.Model != "" {
			response.Model = chunk.Model
		}
		if chunk.Usage != nil {
			response.Usage.InputTokens = chunk.Usage.PromptTokens
			response.Usage.OutputTokens = chunk.Usage.CompletionTokens
		}

		if len(chunk.Choices) == 0 {
			return false
		}
		choice := chunk.Choices[0]

		if choice.Delta.ReasoningContent != "" {
			response.Thinking += choice.Delta.ReasoningContent
			events <- llmrelay.ThinkingDeltaEvent(choice.Delta.ReasoningContent)
		} else if choice.Delta.Reasoning != "" {
			response.Thinking += choice.Delta.Reasoning
			events <- llmrelay.ThinkingDeltaEvent(choice.Delta.Reasoning)
		}

		if choice.Delta.Content != "" {
			emitContent(choice.Delta.Content)
		}

		for _, tc := range choice.Delta.ToolCalls {
			partial := llmrelay.ToolCall{
				ID:       tc.ID,
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
			before := aggregator.Len()
			var merged *llmrelay.ToolCall
			if tc.Index != nil {
				merged = aggregator.AddDeltaAt(*tc.Index, partial)
			} else {
				merged = aggregator.AddDelta(partial)
			}
			// Index-only keep-alive fragments for a known call carry no
			// name or argument bytes and emit nothing.
			if tc.Function.Name == "" && tc.Function.Arguments == "" && aggregator.Len() == before {
				continue
			}
			events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			response.StopReason = mapFinishReason(*choice.FinishReason)
		}
		return false
	}

	finish := func() {
		text, thinking := thinkSplit.Flush()
		if thinking != "" {
			response.Thinking += thinking
			events <- llmrelay.ThinkingDeltaEvent(thinking)
		}
		if text != "" {
			response.Text += text
			events <- llmrelay.TextDeltaEvent(text)
		}
		for _, call := range aggregator.CompletedCalls() {
			call.Function.Name = mapping.OriginalName(call.Function.Name)
			response.ToolCalls = append(response.ToolCalls, call)
		}
		if response.StopReason == "" && len(response.ToolCalls) > 0 {
			response.StopReason = "tool_use"
		}
		events <- llmrelay.CompletionEvent(response)
	}

	reader := bufio.NewReader(body)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			text := decoder.Decode(buf[:n])
			for _, frame := range frames.Parse(text) {
				if handleFrame(frame) {
					if frame.Done {
						finish()
					}
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				// Flush held-back bytes and any unterminated last line,
				// then complete with whatever accumulated. Streams that
				// end without [DONE] still get a terminal event.
				tail := frames.Parse(decoder.Flush())
				tail = append(tail, frames.Flush()...)
				for _, frame := range tail {
					if handleFrame(frame) && !frame.Done {
						return
					}
				}
				if !sawChunk {
					events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
						Provider:  "openrouter",
						Message:   "stream ended without any chunks",
						Retryable: true,
						Err:       llmrelay.ErrProviderUnavailable,
					})
					return
				}
				finish()
				return
			}
			events <- llmrelay.ErrorEvent(wrapTransportError("openrouter", token, fmt.Errorf("reading stream: %w", err)))
			return
		}
	}
}
