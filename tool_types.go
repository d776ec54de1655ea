package llmrelay

import (
	"fmt"
)

// NewSearchTool creates a web search tool (OpenAI format).
// Providers convert this to their specific format or map it onto their
// native web-search tool where one exists.
func NewSearchTool() (*Tool, error) {
	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        "search",
			Description: "Search the web for current information",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create search tool: %w", err)
	}

	return tool, nil
}

// NewTextEditorTool creates a text editor tool (OpenAI format).
// This is a client-side tool for editing files.
func NewTextEditorTool() (*Tool, error) {
	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        "text_editor",
			Description: "Edit text files (client-side execution)",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to the file to edit",
					},
					"command": map[string]interface{}{
						"type":        "string",
						"description": "Editor command to execute",
					},
				},
				"required": []string{"path", "command"},
			},
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create text editor tool: %w", err)
	}

	return tool, nil
}

// NewBashTool creates a bash command execution tool (OpenAI format).
// This is a client-side tool for executing shell commands.
func NewBashTool() (*Tool, error) {
	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        "bash",
			Description: "Execute bash commands (client-side execution)",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{
						"type":        "string",
						"description": "The bash command to execute",
					},
				},
				"required": []string{"command"},
			},
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create bash tool: %w", err)
	}

	return tool, nil
}

// NewCustomTool creates a custom function tool (OpenAI format).
//
// Parameters:
//   - name: Function name (required)
//   - description: What the function does
//   - parameters: JSON Schema object defining function parameters (required)
func NewCustomTool(name, description string, parameters map[string]interface{}) (*Tool, error) {
	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom tool %q: %w", name, err)
	}

	return tool, nil
}

// Built-in provider-native tool descriptors. Provider packages reference
// these when translating requests and building the per-request name mapping.
var (
	// OpenAIWebSearchPreview is OpenAI's server-executed web search tool.
	OpenAIWebSearchPreview = ProviderTool{
		ID:          "openai.web_search_preview",
		RequestName: "web_search_preview",
		Description: "OpenAI built-in web search (server-executed)",
	}

	// AnthropicWebSearch is Anthropic's server-executed web search tool.
	AnthropicWebSearch = ProviderTool{
		ID:          "anthropic.web_search",
		RequestName: "web_search",
		Description: "Anthropic built-in web search (server-executed)",
	}
)
