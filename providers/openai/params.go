package openai

import (
	"fmt"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// responsesRequest is a Responses API request body.
type responsesRequest struct {
	Model             string        `json:"model"`
	Input             []inputItem   `json:"input"`
	Instructions      *string       `json:"instructions,omitempty"`
	MaxOutputTokens   *int          `json:"max_output_tokens,omitempty"`
	Temperature       *float64      `json:"temperature,omitempty"`
	TopP              *float64      `json:"top_p,omitempty"`
	Tools             []interface{} `json:"tools,omitempty"`
	ToolChoice        interface{}   `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool         `json:"parallel_tool_calls,omitempty"`
	Reasoning         *reasoningCfg `json:"reasoning,omitempty"`
	Text              *textCfg      `json:"text,omitempty"`
	Stream            bool          `json:"stream"`
}

type reasoningCfg struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type textCfg struct {
	Format interface{} `json:"format,omitempty"`
}

// inputItem is one element of the Responses API input array. The Responses
// API flattens conversation history into typed items: messages, prior
// function calls, and their outputs.
type inputItem struct {
	Type      string        `json:"type"`
	Role      string        `json:"role,omitempty"`
	Content   []contentPart `json:"content,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// functionTool is a function tool definition. The Responses API flattens the
// function fields to the top level rather than nesting them.
type functionTool struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// providerToolDef enables a server-executed tool such as web_search_preview.
type providerToolDef struct {
	Type string `json:"type"`
}

// responsesResponse is the final response object, both the non-streaming
// body and the payload of the response.completed stream event.
type responsesResponse struct {
	ID                string       `json:"id"`
	Model             string       `json:"model"`
	Status            string       `json:"status"`
	Output            []outputItem `json:"output"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Usage *responsesUsage `json:"usage"`
}

type responsesUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	OutputTokensDetails struct {
		ReasoningTokens int `json:"reasoning_tokens"`
	} `json:"output_tokens_details"`
}

// outputItem is one element of the response output array.
type outputItem struct {
	Type      string        `json:"type"`
	ID        string        `json:"id"`
	Role      string        `json:"role,omitempty"`
	Status    string        `json:"status,omitempty"`
	Content   []contentPart `json:"content,omitempty"`
	Summary   []contentPart `json:"summary,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
}

// buildResponsesRequest converts a library request to the Responses API wire
// format and returns the per-request tool-name mapping.
func buildResponsesRequest(req *llmrelay.ChatRequest) (*responsesRequest, *llmrelay.ToolNameMapping, error) {
	if err := llmrelay.ValidateRequestParams(req.Params); err != nil {
		return nil, nil, &llmrelay.ValidationError{
			Field:  "params",
			Reason: err.Error(),
			Err:    llmrelay.ErrInvalidRequest,
		}
	}

	mapping := req.Params.NameMapping()

	out := &responsesRequest{
		Model: req.Model,
		Input: convertMessages(req.Messages, mapping),
	}

	params := req.Params
	if params == nil {
		return out, mapping, nil
	}

	out.Instructions = params.System
	out.MaxOutputTokens = params.MaxTokens
	out.Temperature = params.Temperature
	out.TopP = params.TopP
	out.ParallelToolCalls = params.ParallelToolCalls

	if params.ThinkingRequested() {
		effort := "medium"
		if params.ThinkingLevel != nil {
			effort = *params.ThinkingLevel
		}
		out.Reasoning = &reasoningCfg{Effort: effort, Summary: "auto"}
	}

	for _, tool := range params.Tools {
		out.Tools = append(out.Tools, functionTool{
			Type:        "function",
			Name:        mapping.RequestName(tool.Function.Name),
			Description: tool.Function.Description,
			Parameters:  tool.Function.Parameters,
		})
	}

	for _, pt := range params.ProviderTools {
		if name, ok := mapping.ProviderToolRequestName(pt.ID); ok && pt.ID == llmrelay.OpenAIWebSearchPreview.ID {
			out.Tools = append(out.Tools, providerToolDef{Type: name})
		}
	}
	if params.WebSearch != nil && *params.WebSearch && !hasWebSearch(out.Tools) {
		out.Tools = append(out.Tools, providerToolDef{Type: llmrelay.OpenAIWebSearchPreview.RequestName})
	}

	if params.ToolChoice != nil {
		tc, err := convertToolChoice(params.ToolChoice, mapping)
		if err != nil {
			return nil, nil, err
		}
		out.ToolChoice = tc
	}

	if params.ResponseFormat != nil {
		switch params.ResponseFormat.Type {
		case "json_object":
			out.Text = &textCfg{Format: map[string]interface{}{"type": "json_object"}}
		case "json_schema":
			out.Text = &textCfg{Format: map[string]interface{}{
				"type":   "json_schema",
				"schema": params.ResponseFormat.JSONSchema,
			}}
		}
	}

	return out, mapping, nil
}

func hasWebSearch(tools []interface{}) bool {
	for _, t := range tools {
		if def, ok := t.(providerToolDef); ok && def.Type == llmrelay.OpenAIWebSearchPreview.RequestName {
			return true
		}
	}
	return false
}

// convertMessages flattens conversation history into Responses input items.
// Assistant tool calls become function_call items and tool-result messages
// become function_call_output items, with historical tool names rewritten to
// their wire forms.
func convertMessages(messages []llmrelay.Message, mapping *llmrelay.ToolNameMapping) []inputItem {
	out := make([]inputItem, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llmrelay.RoleTool:
			out = append(out, inputItem{
				Type:   "function_call_output",
				CallID: msg.ToolCallID,
				Output: msg.Content,
			})
		case llmrelay.RoleAssistant:
			if msg.Content != "" {
				out = append(out, inputItem{
					Type:    "message",
					Role:    "assistant",
					Content: []contentPart{{Type: "output_text", Text: msg.Content}},
				})
			}
			for _, call := range msg.ToolCalls {
				out = append(out, inputItem{
					Type:      "function_call",
					CallID:    call.ID,
					Name:      mapping.RequestName(call.Function.Name),
					Arguments: call.Function.Arguments,
				})
			}
		default:
			out = append(out, inputItem{
				Type:    "message",
				Role:    msg.Role,
				Content: []contentPart{{Type: "input_text", Text: msg.Content}},
			})
		}
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
			"name": mapping.RequestName(choice.ToolName),
		}, nil
	default:
		return nil, fmt.Errorf("openai: invalid tool choice mode: %s", choice.Mode)
	}
}

// convertResponse maps a final Responses object to the library format.
func convertResponse(resp *responsesResponse, mapping *llmrelay.ToolNameMapping) *llmrelay.ChatResponse {
	out := &llmrelay.ChatResponse{Model: resp.Model}

	if resp.Usage != nil {
		out.Usage = llmrelay.Usage{
			InputTokens:    resp.Usage.InputTokens,
			OutputTokens:   resp.Usage.OutputTokens,
			ThinkingTokens: resp.Usage.OutputTokensDetails.ReasoningTokens,
		}
	}

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" {
					out.Text += part.Text
				}
			}
		case "reasoning":
			for _, part := range item.Summary {
				out.Thinking += part.Text
			}
		case "function_call":
			out.ToolCalls = append(out.ToolCalls, llmrelay.ToolCall{
				ID:       item.CallID,
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{
					Name:      mapping.OriginalName(item.Name),
					Arguments: item.Arguments,
				},
			})
		}
	}

	out.StopReason = mapStatus(resp, out)
	return out
}

// mapStatus derives a normalized stop reason from the response status.
func mapStatus(resp *responsesResponse, out *llmrelay.ChatResponse) string {
	switch resp.Status {
	case "completed":
		if len(out.ToolCalls) > 0 {
			return "tool_use"
		}
		return "end_turn"
	case "incomplete":
		if resp.IncompleteDetails != nil && resp.IncompleteDetails.Reason == "max_output_tokens" {
			return "max_tokens"
		}
		return "incomplete"
	default:
		return resp.Status
	}
}
