package openai

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

// Stream sends a streaming Responses API request and returns a channel of
// normalized events. The channel always ends with exactly one terminal event
// (Completion or Error) and is then closed.
func (p *Provider) Stream(ctx context.Context, req *llmrelay.ChatRequest) (<-chan llmrelay.StreamEvent, error) {
	if err := req.Cancel.Err(); err != nil {
		return nil, err
	}

	apiReq, mapping, err := buildResponsesRequest(req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = true

	ctx, cancel := req.Cancel.Bind(ctx)

	httpReq, err := p.buildHTTPRequest(ctx, "/responses", apiReq)
	if err != nil {
		cancel()
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, wrapTransportError(p.Name().String(), req.Cancel, err)
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

// translateStream reads the typed event stream and emits normalized events.
// Exactly one terminal event is sent before returning.
//
// Routing happens on the envelope "type" field of each frame payload (the
// SSE event name duplicates it). Unrecognized envelope types are skipped so
// new server-side event kinds don't break existing consumers.
func (p *Provider) translateStream(body io.Reader, token *llmrelay.CancellationToken, mapping *llmrelay.ToolNameMapping, events chan<- llmrelay.StreamEvent) {
	var (
		decoder    streamio.UTF8Decoder
		frames     streamio.FrameParser
		aggregator = llmrelay.NewToolCallAggregator()
		response   = &llmrelay.ChatResponse{}
		sawEvent   bool
	)

	// handleFrame returns true when the stream is terminally resolved; a
	// terminal event has already been emitted in that case.
	handleFrame := func(frame streamio.Frame) bool {
		if frame.Done {
			// The Responses API closes with response.completed rather than
			// a [DONE] sentinel, but tolerate gateways that add one.
			return false
		}

		envelope := gjson.ParseBytes(frame.Data)
		envelopeType := envelope.Get("type").String()
		if envelopeType == "" {
			envelopeType = frame.Event
		}
		sawEvent = true

		switch envelopeType {
		case "response.output_text.delta":
			delta := envelope.Get("delta").String()
			if delta != "" {
				response.Text += delta
				events <- llmrelay.TextDeltaEvent(delta)
			}

		case "response.reasoning_summary_text.delta", "response.reasoning_text.delta":
			delta := envelope.Get("delta").String()
			if delta != "" {
				response.Thinking += delta
				events <- llmrelay.ThinkingDeltaEvent(delta)
			}

		case "response.output_item.added":
			item := envelope.Get("item")
			if item.Get("type").String() != "function_call" {
				return false
			}
			index := int(envelope.Get("output_index").Int())
			merged := aggregator.AddDeltaAt(index, llmrelay.ToolCall{
				ID:       item.Get("call_id").String(),
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{
					Name: item.Get("name").String(),
				},
			})
			if merged != nil {
				events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
			}

		case "response.function_call_arguments.delta":
			index := int(envelope.Get("output_index").Int())
			merged := aggregator.AddDeltaAt(index, llmrelay.ToolCall{
				Function: llmrelay.FunctionCall{
					Arguments: envelope.Get("delta").String(),
				},
			})
			if merged != nil {
				events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
			}

		case "response.output_item.done":
			// Arguments were already accumulated delta by delta; the done
			// item is authoritative if a gateway dropped the deltas.
			item := envelope.Get("item")
			if item.Get("type").String() != "function_call" {
				return false
			}
			index := int(envelope.Get("output_index").Int())
			merged := aggregator.AddDeltaAt(index, llmrelay.ToolCall{
				ID: item.Get("call_id").String(),
				Function: llmrelay.FunctionCall{
					Name: item.Get("name").String(),
				},
			})
			if merged != nil && merged.Function.Arguments == "" {
				merged = aggregator.AddDeltaAt(index, llmrelay.ToolCall{
					Function: llmrelay.FunctionCall{
						Arguments: item.Get("arguments").String(),
					},
				})
				if merged != nil {
					events <- llmrelay.ToolCallDeltaEvent(merged.Clone())
				}
			}

		case "response.completed", "response.incomplete":
			var final struct {
				Response responsesResponse `json:"response"`
			}
			if err := json.Unmarshal(frame.Data, &final); err == nil && final.Response.ID != "" {
				events <- llmrelay.CompletionEvent(convertResponse(&final.Response, mapping))
				return true
			}
			// Fall back to the accumulated state if the final object is
			// unreadable.
			events <- llmrelay.CompletionEvent(p.accumulatedResponse(response, aggregator, mapping))
			return true

		case "response.failed", "error":
			message := envelope.Get("response.error.message").String()
			if message == "" {
				message = envelope.Get("error.message").String()
			}
			if message == "" {
				message = envelope.Get("message").String()
			}
			if message == "" {
				message = "response failed"
			}
			events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
				Provider:  p.Name().String(),
				Message:   message,
				Retryable: false,
				Err:       llmrelay.ErrProviderUnavailable,
			})
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
				if !sawEvent {
					events <- llmrelay.ErrorEvent(&llmrelay.ProviderError{
						Provider:  p.Name().String(),
						Message:   "stream ended without any events",
						Retryable: true,
						Err:       llmrelay.ErrProviderUnavailable,
					})
					return
				}
				// Stream ended without a final response object. Complete
				// with what accumulated so consumers still get a terminal
				// Completion.
				events <- llmrelay.CompletionEvent(p.accumulatedResponse(response, aggregator, mapping))
				return
			}
			events <- llmrelay.ErrorEvent(wrapTransportError(p.Name().String(), token, fmt.Errorf("reading stream: %w", err)))
			return
		}
	}
}

// accumulatedResponse assembles a best-effort completion from the deltas
// seen so far.
func (p *Provider) accumulatedResponse(response *llmrelay.ChatResponse, aggregator *llmrelay.ToolCallAggregator, mapping *llmrelay.ToolNameMapping) *llmrelay.ChatResponse {
	for _, call := range aggregator.CompletedCalls() {
		call.Function.Name = mapping.OriginalName(call.Function.Name)
		response.ToolCalls = append(response.ToolCalls, call)
	}
	if response.StopReason == "" {
		if len(response.ToolCalls) > 0 {
			response.StopReason = "tool_use"
		} else {
			response.StopReason = "end_turn"
		}
	}
	return response
}
