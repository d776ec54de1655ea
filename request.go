package llmrelay

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatRequest contains the parameters for a generation request.
type ChatRequest struct {
	// Messages contains the conversation history
	Messages []Message

	// Model is the model identifier (e.g., "claude-sonnet-4-5",
	// "anthropic/claude-sonnet-4-5" for OpenRouter, "gpt-5" for OpenAI)
	Model string

	// Params contains all request parameters (temperature, max_tokens,
	// thinking settings, tools, etc.). Provider adapters extract what they
	// support from this unified struct. Nil means provider defaults.
	Params *RequestParams

	// Cancel is an optional abort signal. Providers check it before issuing
	// the network call and bind it into the transport context so an
	// in-flight request or open stream aborts promptly. A single token may
	// be shared across concurrent requests.
	Cancel *CancellationToken
}

// Message represents a single message in the conversation.
type Message struct {
	// Role is one of the Role* constants
	Role string `json:"role"`

	// Content is the text content of the message
	Content string `json:"content"`

	// Thinking is prior assistant reasoning text, replayed to providers
	// that accept it (ignored by the rest)
	Thinking string `json:"thinking,omitempty"`

	// ToolCalls are tool invocations issued by a prior assistant turn
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a RoleTool message back to the call it answers
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// UserMessage builds a plain user text message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds a plain assistant text message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// SystemMessage builds a system prompt message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// ToolResultMessage builds a tool-result message answering callID.
func ToolResultMessage(callID, result string) Message {
	return Message{Role: RoleTool, Content: result, ToolCallID: callID}
}
