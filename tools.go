package llmrelay

import (
	"errors"
	"fmt"
)

// Tool type constants (for the unified tools array)
const (
	ToolTypeSearch     = "search"
	ToolTypeTextEditor = "text_editor"
	ToolTypeBash       = "bash"
	ToolTypeCustom     = "custom"
)

// ExecutionSide indicates where tool execution happens
type ExecutionSide string

const (
	ExecutionSideServer ExecutionSide = "server" // Provider executes tool
	ExecutionSideClient ExecutionSide = "client" // Consumer executes tool
)

// ToolChoiceMode controls tool selection behavior
type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"     // Model decides whether to use tools
	ToolChoiceModeRequired ToolChoiceMode = "required" // Model must use a tool
	ToolChoiceModeNone     ToolChoiceMode = "none"     // Model cannot use tools
	ToolChoiceModeSpecific ToolChoiceMode = "specific" // Model must use specific tool
)

// FunctionDetails represents the function definition within a tool (OpenAI format).
// This matches the universal standard used by OpenAI, OpenRouter, and easily
// converts to Anthropic/Gemini.
type FunctionDetails struct {
	Name        string                 `json:"name"`                  // Function name (required)
	Description string                 `json:"description,omitempty"` // What the function does
	Parameters  map[string]interface{} `json:"parameters"`            // JSON Schema for parameters
}

// Tool represents a function tool (OpenAI universal format).
type Tool struct {
	Type     string          `json:"type"`     // Always "function" for function tools
	Function FunctionDetails `json:"function"` // Function definition
}

// Validate checks if the Tool is properly configured
func (t *Tool) Validate() error {
	if t.Type == "" {
		return errors.New("tool type is required")
	}

	if t.Type != "function" {
		return fmt.Errorf("unsupported tool type: %s (only 'function' is supported)", t.Type)
	}

	if t.Function.Name == "" {
		return errors.New("function name is required")
	}

	if t.Function.Parameters == nil {
		return errors.New("function parameters are required")
	}

	if schemaType, ok := t.Function.Parameters["type"].(string); !ok || schemaType != "object" {
		return errors.New("function parameters must be a JSON schema with type 'object'")
	}

	return nil
}

// ProviderTool describes a provider-native (built-in, server-executed) tool.
// Unlike function tools, these are executed by the vendor; on the wire they
// share the flat tool-name namespace with function tools, which is why the
// request-side ToolNameMapping exists.
type ProviderTool struct {
	// ID is the stable cross-request identifier, namespaced by provider
	// (e.g., "openai.web_search_preview", "anthropic.web_search")
	ID string `json:"id"`

	// RequestName is the canonical name the provider expects on the wire
	RequestName string `json:"request_name"`

	// Description is informational only
	Description string `json:"description,omitempty"`
}

// ToolChoice controls whether and which tools the model may use.
type ToolChoice struct {
	Mode ToolChoiceMode `json:"mode"`

	// ToolName is required when Mode is ToolChoiceModeSpecific
	ToolName string `json:"tool_name,omitempty"`
}

// Validate checks if the ToolChoice is properly configured
func (tc *ToolChoice) Validate() error {
	switch tc.Mode {
	case ToolChoiceModeAuto, ToolChoiceModeRequired, ToolChoiceModeNone:
		return nil
	case ToolChoiceModeSpecific:
		if tc.ToolName == "" {
			return errors.New("tool name is required for specific tool choice")
		}
		return nil
	default:
		return fmt.Errorf("invalid tool choice mode: %s", tc.Mode)
	}
}

// NewToolChoice creates a tool choice with the given mode.
func NewToolChoice(mode ToolChoiceMode) (*ToolChoice, error) {
	tc := &ToolChoice{Mode: mode}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// NewSpecificToolChoice creates a tool choice forcing a specific tool.
func NewSpecificToolChoice(toolName string) (*ToolChoice, error) {
	tc := &ToolChoice{Mode: ToolChoiceModeSpecific, ToolName: toolName}
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	return tc, nil
}

// FunctionToolNames extracts the function names of a tool slice in order,
// the shape NewToolNameMapping consumes.
func FunctionToolNames(tools []Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Function.Name)
	}
	return names
}

// ProviderToolRequestNames builds the id->request-name map for the name
// mapping from a slice of provider-native tools.
func ProviderToolRequestNames(tools []ProviderTool) map[string]string {
	m := make(map[string]string, len(tools))
	for _, t := range tools {
		m[t.ID] = t.RequestName
	}
	return m
}
