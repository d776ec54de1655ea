package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	llmrelay "github.com/relaylabs/relay-llm-go"
	"github.com/relaylabs/relay-llm-go/internal/streamio"
)

// Stream sends a streaming chat request and returns a channel of normalized
// events. Ollama streams one JSON object per line; the shared frame parser
// accepts bare JSONL lines alongside SSE, so the translator reads frames the
// same way the SSE providers do. The channel always ends with exactly one
// terminal event (Completion or Error) and is then closed.
func (p *Provider) Stream(ctx context.Context, req *llmrelay.ChatRequest) (<-chan llmrelay.StreamEvent, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	apiReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = true

	ctx, cancel := req.Cancel.Bind(ctx)

	httpReq, err := p.buildHTTPRequest(ctx, "/api/chat", apiReq)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, wrapTransportError(req.Cancel, err)
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
		p.translateStream(resp.Body, req.Cancel, events)
	}()

	return events, nil
}

// translateStream reads JSONL chunks and emits normalized events. Exactly
// one terminal event is sent before returning.
func (p *Provider) translateStream(body io.Reader, token *llmrelay.CancellationToken, events chan<- llmrelay.StreamEvent) {
	var (
		decoder    streamio.UTF8Decoder
		frames     streamio.FrameParser
		thinkSplit streamio.ThinkSplitter
		aggregator = llmrelay.NewToolCallAggregator()
		response   = &llmrelay.ChatResponse{}
		sawChunk   bool
	)

	emitContent := func(content string) {
		// Models without a native thinking field emit <think> tags inline.
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

	// handleFrame returns true once a terminal event has been emitted.
	handleFrame := func(frame streamio.Frame) bool {
		if frame.Done {
			return false
		}

		var chunk chatResponse
		if err := json.Unmarshal(frame.Data, &chunk); err != nil {
			return false
		}

		if chunk.Error != "" {
			events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
				Provider:  p.Name().String(),
				Message:   chunk.Error,
				Retryable: false,
				Err:       llmrelay.ErrProviderUnavailable,
			})
			return true
		}
		sawChunk = true

		if chunk.Model != "" {
			response.Model = chunk.Model
		}

		if chunk.Message.Thinking != "" {
			response.Thinking += chunk.Message.Thinking
			events <- llmrelay.ThinkingDeltaEvent(chunk.Message.Thinking)
		}
		if chunk.Message.Content != "" {
			emitContent(chunk.Message.Content)
		}

		for _, wc := range chunk.Message.ToolCalls {
			args := "{}"
			if len(wc.Function.Arguments) > 0 {
				args = string(wc.Function.Arguments)
			}
			merged := aggregator.AddDelta(llmrelay.ToolCall{
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{
					Name:      wc.Function.Name,
					Arguments: args,
				},
			})
			if merged != nil {
				events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
			}
		}

		if chunk.Done {
			text, thinking := thinkSplit.Flush()
			if thinking != "" {
				response.Thinking += thinking
				events <- llmrelay.ThinkingDeltaEvent(thinking)
			}
			if text != "" {
				response.Text += text
				events <- llmrelay.TextDeltaEvent(text)
			}
			response.ToolCalls = aggregator.CompletedCalls()
			response.Usage = llmrelay.Usage{
				InputTokens:  chunk.PromptEvalCount,
				OutputTokens: chunk.EvalCount,
			}
			response.StopReason = mapDoneReason(chunk.DoneReason, len(response.ToolCalls) > 0)
			events <- llmrelay.CompletionEvent(response)
			return true
		}
		return false
	}

	reader := bufio.NewReader(body)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			for _, frame := range frames.Parse(decoder.Decode(buf[:n])) {
				if handleFrame(frame) {
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				tail := frames.Parse(decoder.Flush())
				tail = append(tail, frames.Flush()...)
				for _, frame := range tail {
					if handleFrame(frame) {
						return
					}
				}
				if !sawChunk {
					events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
						Provider:  p.Name().String(),
						Message:   "stream ended without any chunks",
						Retryable: true,
						Err:       llmrelay.ErrProviderUnavailable,
					})
					return
				}
				// Stream ended without a done marker; complete with what
				// accumulated so consumers still get a terminal event.
				text, thinking := thinkSplit.Flush()
				if thinking != "" {
					response.Thinking += thinking
					events <- llmrelay.ThinkingDeltaEvent(thinking)
				}
				if text != "" {
					response.Text += text
					events <- llmrelay.TextDeltaEvent(text)
				}
				response.ToolCalls = aggregator.CompletedCalls()
				if response.StopReason == "" {
					response.StopReason = mapDoneReason("stop", len(response.ToolCalls) > 0)
				}
				events <- llmrelay.CompletionEvent(response)
				return
			}
			events <- llmrelay.ErrorEvent(wrapTransportError(token, fmt.Errorf("reading stream: %w", err)))
			return
		}
	}
}
