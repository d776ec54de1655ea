package anthropic

import (
	"errors"
	"testing"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

func boolPtr(b bool) *bool       { return &b }
func intPtr(i int) *int          { return &i }
func stringPtr(s string) *string { return &s }

func emptyMapping() *llmrelay.ToolNameMapping {
	return (&llmrelay.RequestParams{}).NameMapping()
}

// TestConvertMessages_Roles tests the role routing: system skipped, user
// text, tool results as user-role blocks.
func TestConvertMessages_Roles(t *testing.T) {
	messages := []llmrelay.Message{
		llmrelay.SystemMessage("ignored here"),
		llmrelay.UserMessage("hello"),
		{Role: llmrelay.RoleTool, Content: "42", ToolCallID: "toolu_1"},
	}

	result, err := convertMessages(messages, emptyMapping())
	if err != nil {
		t.Fatalf("convertMessages() error = %v", err)
	}

	// System message is dropped; it rides in params.System instead.
	if len(result) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(result))
	}
	if result[0].Role != "user" || result[1].Role != "user" {
		t.Errorf("roles = %s, %s; tool results must be user-role", result[0].Role, result[1].Role)
	}
}

// TestConvertMessages_ToolResultMissingID tests the required tool_call_id.
func TestConvertMessages_ToolResultMissingID(t *testing.T) {
	messages := []llmrelay.Message{
		{Role: llmrelay.RoleTool, Content: "result"},
	}

	_, err := convertMessages(messages, emptyMapping())
	if err == nil {
		t.Error("expected error for missing tool_call_id, got nil")
	}
}

// TestConvertMessages_AssistantToolCalls tests tool_use block construction
// with wire-name rewriting for replayed history.
func TestConvertMessages_AssistantToolCalls(t *testing.T) {
	tool, _ := llmrelay.NewCustomTool("lookup", "caller lookup", map[string]interface{}{"type": "object"})
	mapping := (&llmrelay.RequestParams{
		Tools: []llmrelay.Tool{*tool},
		ProviderTools: []llmrelay.ProviderTool{{
			ID:          "vendor.lookup",
			RequestName: "lookup",
		}},
	}).NameMapping()

	messages := []llmrelay.Message{
		{
			Role:    llmrelay.RoleAssistant,
			Content: "checking",
			ToolCalls: []llmrelay.ToolCall{{
				ID:       "toolu_1",
				CallType: llmrelay.ToolCallTypeFunction,
				Function: llmrelay.FunctionCall{Name: "lookup__1", Arguments: `{"q":"x"}`},
			}},
		},
	}

	result, err := convertMessages(messages, mapping)
	if err != nil {
		t.Fatalf("convertMessages() error = %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
	if result[0].Role != "assistant" {
		t.Errorf("role = %s", result[0].Role)
	}
	if len(result[0].Content) != 2 {
		t.Fatalf("expected text + tool_use blocks, got %d", len(result[0].Content))
	}
	toolUse := result[0].Content[1].OfToolUse
	if toolUse == nil {
		t.Fatal("second block is not tool_use")
	}
	if toolUse.Name != "lookup__1" {
		t.Errorf("tool_use name = %q, want wire name", toolUse.Name)
	}
}

// TestConvertMessages_InvalidToolArguments tests rejection of non-JSON
// arguments in replayed calls.
func TestConvertMessages_InvalidToolArguments(t *testing.T) {
	messages := []llmrelay.Message{
		{
			Role: llmrelay.RoleAssistant,
			ToolCalls: []llmrelay.ToolCall{{
				ID:       "toolu_1",
				Function: llmrelay.FunctionCall{Name: "lookup", Arguments: `{"q":`},
			}},
		},
	}

	_, err := convertMessages(messages, emptyMapping())
	if err == nil {
		t.Error("expected error for truncated arguments, got nil")
	}
}

// TestBuildMessageParams_Thinking tests thinking budget configuration.
func TestBuildMessageParams_Thinking(t *testing.T) {
	req := &llmrelay.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmrelay.Message{llmrelay.UserMessage("hi")},
		Params: &llmrelay.RequestParams{
			ThinkingEnabled: boolPtr(true),
			MaxTokens:       intPtr(8000),
		},
	}

	params, _, err := buildMessageParams(req)
	if err != nil {
		t.Fatalf("buildMessageParams() error = %v", err)
	}
	if params.Thinking.OfEnabled == nil {
		t.Fatal("thinking not enabled")
	}
	if params.Thinking.OfEnabled.BudgetTokens <= 0 {
		t.Errorf("budget tokens = %d, want positive default", params.Thinking.OfEnabled.BudgetTokens)
	}
	if params.MaxTokens != 8000 {
		t.Errorf("max tokens = %d", params.MaxTokens)
	}
}

// TestBuildMessageParams_SystemPrompt tests the system prompt block.
func TestBuildMessageParams_SystemPrompt(t *testing.T) {
	req := &llmrelay.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmrelay.Message{llmrelay.UserMessage("hi")},
		Params:   &llmrelay.RequestParams{System: stringPtr("be precise")},
	}

	params, _, err := buildMessageParams(req)
	if err != nil {
		t.Fatalf("buildMessageParams() error = %v", err)
	}
	if len(params.System) != 1 || params.System[0].Text != "be precise" {
		t.Errorf("system = %+v", params.System)
	}
}

// TestBuildMessageParams_DefaultMaxTokens tests the fallback when the caller
// sets no limit; the Messages API requires one.
func TestBuildMessageParams_DefaultMaxTokens(t *testing.T) {
	req := &llmrelay.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmrelay.Message{llmrelay.UserMessage("hi")},
	}

	params, _, err := buildMessageParams(req)
	if err != nil {
		t.Fatalf("buildMessageParams() error = %v", err)
	}
	if params.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want 4096 default", params.MaxTokens)
	}
}

// TestBuildMessageParams_InvalidParams tests parameter validation.
func TestBuildMessageParams_InvalidParams(t *testing.T) {
	req := &llmrelay.ChatRequest{
		Model:    "claude-sonnet-4-5",
		Messages: []llmrelay.Message{llmrelay.UserMessage("hi")},
		Params:   &llmrelay.RequestParams{ThinkingLevel: stringPtr("extreme")},
	}

	_, _, err := buildMessageParams(req)
	var valErr *llmrelay.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
