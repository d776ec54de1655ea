package ollama

import (
	"encoding/json"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// chatRequest is an Ollama /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Think    *bool         `json:"think,omitempty"`
	Format   interface{}   `json:"format,omitempty"`
	Tools    []wireTool    `json:"tools,omitempty"`
	Options  *wireOptions  `json:"options,omitempty"`
}

// wireOptions carries sampling parameters. Ollama nests them under
// "options" instead of the top level.
type wireOptions struct {
	NumPredict  *int     `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Thinking  string         `json:"thinking,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

// wireToolCall is a tool call in Ollama's format. Arguments are a JSON
// object, not a string, and there is no call id on the wire.
type wireToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description,omitempty"`
		Parameters  map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

// chatResponse is one /api/chat body: the whole response when stream=false,
// or one JSONL line when streaming (partial message, final line has
// done=true and the token counts).
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role      string         `json:"role"`
		Content   string         `json:"content"`
		Thinking  string         `json:"thinking,omitempty"`
		ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	Error           string `json:"error,omitempty"`
}

// buildChatRequest converts a library request to the Ollama wire format.
// Ollama has no name-length or collision constraints on tool names, so no
// name mapping is needed.
func buildChatRequest(req *llmrelay.ChatRequest) (*chatRequest, error) {
	if err := llmrelay.ValidateRequestParams(req.Params); err != nil {
		return nil, &llmrelay.ValidationError{
			Field:  "params",
			Reason: err.Error(),
			Err:    llmrelay.ErrInvalidRequest,
		}
	}

	out := &chatRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}

	params := req.Params
	if params == nil {
		return out, nil
	}

	if params.System != nil {
		out.Messages = append([]wireMessage{{Role: "system", Content: *params.System}}, out.Messages...)
	}

	if params.ThinkingRequested() {
		think := true
		out.Think = &think
	}

	if params.ResponseFormat != nil {
		switch params.ResponseFormat.Type {
		case "json_object":
			out.Format = "json"
		case "json_schema":
			out.Format = params.ResponseFormat.JSONSchema
		}
	}

	for _, tool := range params.Tools {
		wt := wireTool{Type: "function"}
		wt.Function.Name = tool.Function.Name
		wt.Function.Description = tool.Function.Description
		wt.Function.Parameters = tool.Function.Parameters
		out.Tools = append(out.Tools, wt)
	}

	if params.MaxTokens != nil || params.Temperature != nil || params.TopP != nil ||
		params.TopK != nil || len(params.Stop) > 0 || params.Seed != nil {
		out.Options = &wireOptions{
			NumPredict:  params.MaxTokens,
			Temperature: params.Temperature,
			TopP:        params.TopP,
			TopK:        params.TopK,
			Stop:        params.Stop,
			Seed:        params.Seed,
		}
	}

	return out, nil
}

func convertMessages(messages []llmrelay.Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wm := wireMessage{
			Role:     msg.Role,
			Content:  msg.Content,
			Thinking: msg.Thinking,
		}
		for _, call := range msg.ToolCalls {
			var wc wireToolCall
			wc.Function.Name = call.Function.Name
			if call.Function.Arguments != "" && json.Valid([]byte(call.Function.Arguments)) {
				wc.Function.Arguments = json.RawMessage(call.Function.Arguments)
			} else {
				wc.Function.Arguments = json.RawMessage("{}")
			}
			wm.ToolCalls = append(wm.ToolCalls, wc)
		}
		out = append(out, wm)
	}
	return out
}

// convertToolCalls maps wire tool calls to library format. Ollama sends no
// call ids, so the aggregator path synthesizes them; the non-streaming path
// does the same via AddDelta.
func convertToolCalls(calls []wireToolCall, aggregator *llmrelay.ToolCallAggregator) []llmrelay.ToolCall {
	for _, wc := range calls {
		args := "{}"
		if len(wc.Function.Arguments) > 0 {
			args = string(wc.Function.Arguments)
		}
		aggregator.AddDelta(llmrelay.ToolCall{
			CallType: llmrelay.ToolCallTypeFunction,
			Function: llmrelay.FunctionCall{
				Name:      wc.Function.Name,
				Arguments: args,
			},
		})
	}
	return aggregator.CompletedCalls()
}

func convertResponse(resp *chatResponse) *llmrelay.ChatResponse {
	out := &llmrelay.ChatResponse{
		Model:    resp.Model,
		Text:     resp.Message.Content,
		Thinking: resp.Message.Thinking,
		Usage: llmrelay.Usage{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
		},
	}

	if len(resp.Message.ToolCalls) > 0 {
		out.ToolCalls = convertToolCalls(resp.Message.ToolCalls, llmrelay.NewToolCallAggregator())
	}

	out.StopReason = mapDoneReason(resp.DoneReason, len(out.ToolCalls) > 0)
	return out
}

func mapDoneReason(reason string, hasToolCalls bool) string {
	switch reason {
	case "stop":
		if hasToolCalls {
			return "tool_use"
		}
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return reason
	}
}
