package openrouter

import (
	"fmt"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// chatCompletionRequest is an OpenAI-compatible chat completion request.
type chatCompletionRequest struct {
	Model             string      `json:"model"`
	Messages          []wireMessage `json:"messages"`
	MaxTokens         *int        `json:"max_tokens,omitempty"`
	Temperature       *float64    `json:"temperature,omitempty"`
	TopP              *float64    `json:"top_p,omitempty"`
	TopK              *int        `json:"top_k,omitempty"`
	Stop              []string    `json:"stop,omitempty"`
	Seed              *int        `json:"seed,omitempty"`
	FrequencyPenalty  *float64    `json:"frequency_penalty,omitempty"`
	PresencePenalty   *float64    `json:"presence_penalty,omitempty"`
	Stream            bool        `json:"stream"`
	Tools             []wireTool  `json:"tools,omitempty"`
	ToolChoice        interface{} `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool       `json:"parallel_tool_calls,omitempty"`
	ResponseFormat    interface{} `json:"response_format,omitempty"`
	Models            []string    `json:"models,omitempty"` // fallback models
}

// wireMessage is a message in OpenAI chat format.
type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// wireToolCall is a tool call in assistant messages and stream deltas.
// Index is only present while streaming.
type wireToolCall struct {
	Index    *int             `json:"index,omitempty"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type wireTool struct {
	Type     string           `json:"type"`
	Function wireFunctionDef  `json:"function"`
}

type wireFunctionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// chatCompletionResponse is the non-streaming response shape.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role             string         `json:"role"`
			Content          string         `json:"content"`
			Reasoning        string         `json:"reasoning,omitempty"`
			ReasoningContent string         `json:"reasoning_content,omitempty"`
			ToolCalls        []wireToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage wireUsage `json:"usage"`
}

// chatCompletionChunk is one streaming SSE frame payload.
type chatCompletionChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role             string         `json:"role,omitempty"`
			Content          string         `json:"content,omitempty"`
			Reasoning        string         `json:"reasoning,omitempty"`
			ReasoningContent string         `json:"reasoning_content,omitempty"`
			ToolCalls        []wireToolCall `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage,omitempty"`
}

// buildChatCompletionRequest converts a library request to the wire format
// and returns the per-request tool-name mapping used to translate tool
// names in both directions.
func buildChatCompletionRequest(req *llmrelay.ChatRequest) (*chatCompletionRequest, *llmrelay.ToolNameMapping, error) {
	if err := llmrelay.ValidateRequestParams(req.Params); err != nil {
		return nil, nil, &llmrelay.ValidationError{
			Field:  "params",
			Reason: err.Error(),
			Err:    llmrelay.ErrInvalidRequest,
		}
	}

	mapping := req.Params.NameMapping()

	out := &chatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages, mapping),
	}

	params := req.Params
	if params == nil {
		return out, mapping, nil
	}

	out.MaxTokens = params.MaxTokens
	out.Temperature = params.Temperature
	out.TopP = params.TopP
	out.TopK = params.TopK
	out.Stop = params.Stop
	out.Seed = params.Seed
	out.FrequencyPenalty = params.FrequencyPenalty
	out.PresencePenalty = params.PresencePenalty
	out.ParallelToolCalls = params.ParallelToolCalls
	out.Models = params.FallbackModels

	if params.System != nil {
		out.Messages = append([]wireMessage{{Role: "system", Content: *params.System}}, out.Messages...)
	}

	for _, tool := range params.Tools {
		out.Tools = append(out.Tools, wireTool{
			Type: "function",
			Function: wireFunctionDef{
				Name:        mapping.RequestName(tool.Function.Name),
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	if params.ToolChoice != nil {
		tc, err := convertToolChoice(params.ToolChoice, mapping)
		if err != nil {
			return nil, nil, err
		}
		out.ToolChoice = tc
	}

	if params.ResponseFormat != nil {
		out.ResponseFormat = params.ResponseFormat
	}

	return out, mapping, nil
}

// convertMessages translates conversation history, rewriting historical tool
// names to their wire forms so replays stay consistent with the tools array.
func convertMessages(messages []llmrelay.Message, mapping *llmrelay.ToolNameMapping) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wm := wireMessage{Role: msg.Role, Content: msg.Content}

		if msg.Role == llmrelay.RoleTool {
			wm.ToolCallID = msg.ToolCallID
		}

		for _, call := range msg.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireFunctionCall{
					Name:      mapping.RequestName(call.Function.Name),
					Arguments: call.Function.Arguments,
				},
			})
		}

		out = append(out, wm)
	}
	return out
}

func convertToolChoice(choice *llmrelay.ToolChoice, mapping *llmrelay.ToolNameMapping) (interface{}, error) {
	switch choice.Mode {
	case llmrelay.ToolChoiceModeAuto:
		return "auto", nil
	case llmrelay.ToolChoiceModeNone:
		return "none", nil
	case llmrelay.ToolChoiceModeRequired:
		return "required", nil
	case llmrelay.ToolChoiceModeSpecific:
		return map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name": mapping.RequestName(choice.ToolName),
			},
		}, nil
	default:
		return nil, fmt.Errorf("openrouter: invalid tool choice mode: %s", choice.Mode)
	}
}

// convertResponse maps a non-streaming response to the library format,
// translating wire tool names back to the caller's names.
func convertResponse(resp *chatCompletionResponse, mapping *llmrelay.ToolNameMapping) *llmrelay.ChatResponse {
	out := &llmrelay.ChatResponse{
		Model: resp.Model,
		Usage: llmrelay.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Text = choice.Message.Content

	if choice.Message.ReasoningContent != "" {
		out.Thinking = choice.Message.ReasoningContent
	} else if choice.Message.Reasoning != "" {
		out.Thinking = choice.Message.Reasoning
	}

	for _, call := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, llmrelay.ToolCall{
			ID:       call.ID,
			CallType: llmrelay.ToolCallTypeFunction,
			Function: llmrelay.FunctionCall{
				Name:      mapping.OriginalName(call.Function.Name),
				Arguments: call.Function.Arguments,
			},
		})
	}

	if choice.FinishReason != nil {
		out.StopReason = mapFinishReason(*choice.FinishReason)
	}

	return out
}

// mapFinishReason normalizes OpenAI-style finish reasons.
func mapFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	default:
		return reason
	}
}
