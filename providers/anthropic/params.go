package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

// buildMessageParams constructs Anthropic API parameters from a ChatRequest.
// Shared between Generate and Stream. Returns the per-request tool-name
// mapping alongside so responses can be translated back.
func buildMessageParams(req *llmrelay.ChatRequest) (anthropic.MessageNewParams, *llmrelay.ToolNameMapping, error) {
	if err := llmrelay.ValidateRequestParams(req.Params); err != nil {
		return anthropic.MessageNewParams{}, nil, &llmrelay.ValidationError{
			Field:  "params",
			Reason: err.Error(),
			Err:    llmrelay.ErrInvalidRequest,
		}
	}

	mapping := req.Params.NameMapping()

	messages, err := convertMessages(req.Messages, mapping)
	if err != nil {
		return anthropic.MessageNewParams{}, nil, fmt.Errorf("anthropic: failed to convert messages: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &llmrelay.RequestParams{}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(params.GetMaxTokens(4096)),
	}

	if params.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}
	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}
	if params.TopK != nil {
		apiParams.TopK = anthropic.Int(int64(*params.TopK))
	}
	if len(params.Stop) > 0 {
		apiParams.StopSequences = params.Stop
	}

	if params.System != nil {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *params.System,
			},
		}
	}

	// Thinking mode - convert user-friendly level to token budget
	if params.ThinkingRequested() {
		budgetTokens := params.GetThinkingBudgetTokens()
		if budgetTokens == 0 {
			budgetTokens = 5000
		}
		apiParams.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(budgetTokens))
	}

	tools, err := convertTools(params, mapping)
	if err != nil {
		return anthropic.MessageNewParams{}, nil, err
	}
	apiParams.Tools = tools

	toolChoice, err := convertToolChoice(params.ToolChoice, mapping)
	if err != nil {
		return anthropic.MessageNewParams{}, nil, err
	}
	if toolChoice != nil {
		apiParams.ToolChoice = *toolChoice
	}

	return apiParams, mapping, nil
}

// convertMessages converts library messages to Anthropic SDK format.
// Tool-result messages become user-role tool_result blocks, the shape the
// Messages API expects. System messages are skipped here (the system prompt
// rides in params.System).
func convertMessages(messages []llmrelay.Message, mapping *llmrelay.ToolNameMapping) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case llmrelay.RoleSystem:
			continue

		case llmrelay.RoleUser:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case llmrelay.RoleTool:
			if msg.ToolCallID == "" {
				return nil, fmt.Errorf("message %d: tool result missing tool_call_id", i)
			}
			result = append(result, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))

		case llmrelay.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			// Prior thinking text is not replayable without its signature;
			// the API rejects unsigned thinking blocks, so it is dropped.
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for j, call := range msg.ToolCalls {
				input, err := toolCallInput(call)
				if err != nil {
					return nil, fmt.Errorf("message %d, tool call %d: %w", i, j, err)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, mapping.RequestName(call.Function.Name)))
			}
			if len(blocks) == 0 {
				continue
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}
	}

	return result, nil
}

func toolCallInput(call llmrelay.ToolCall) (json.RawMessage, error) {
	if call.Function.Arguments == "" {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid([]byte(call.Function.Arguments)) {
		return nil, fmt.Errorf("tool call arguments are not valid JSON")
	}
	return json.RawMessage(call.Function.Arguments), nil
}

// convertMessage converts an Anthropic response message to library format,
// translating wire tool names back to the caller's names.
func convertMessage(msg *anthropic.Message, mapping *llmrelay.ToolNameMapping) *llmrelay.ChatResponse {
	out := &llmrelay.ChatResponse{
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: llmrelay.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}

	metadata := make(map[string]interface{})

	for _, content := range msg.Content {
		switch content.Type {
		case "text":
			out.Text += content.Text

		case "thinking":
			out.Thinking += content.Thinking
			if content.Signature != "" {
				metadata["thinking_signature"] = content.Signature
			}

		case "redacted_thinking":
			// Redacted thinking carries no readable text; keep the opaque
			// payload for replay fidelity.
			metadata["redacted_thinking"] = content.Data

		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, llmrelay.ToolCall{
				ID:       content.ID,
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{
					Name:      mapping.OriginalName(content.Name),
					Arguments: string(content.Input),
				},
			})
		}
	}

	if msg.StopSequence != "" {
		metadata["stop_sequence"] = msg.StopSequence
	}
	if msg.Usage.CacheCreationInputTokens > 0 {
		metadata["cache_creation_input_tokens"] = int(msg.Usage.CacheCreationInputTokens)
	}
	if msg.Usage.CacheReadInputTokens > 0 {
		metadata["cache_read_input_tokens"] = int(msg.Usage.CacheReadInputTokens)
	}
	if len(metadata) > 0 {
		out.ProviderMetadata = metadata
	}

	return out
}
