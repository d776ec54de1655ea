package llmrelay

import (
	"encoding/json"
	"fmt"
)

// RequestParams represents all possible request parameters across providers.
// All fields are optional pointers to distinguish "not set" from "set to zero value".
type RequestParams struct {
	// ===== Core Parameters (Most Providers) =====

	// MaxTokens sets the maximum number of tokens to generate
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0)
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0)
	TopP *float64 `json:"top_p,omitempty"`

	// TopK limits sampling to top K tokens
	TopK *int `json:"top_k,omitempty"`

	// Stop sequences - generation stops if any of these are generated
	Stop []string `json:"stop,omitempty"`

	// Seed for deterministic sampling (if supported by provider)
	Seed *int `json:"seed,omitempty"`

	// System prompt override (takes precedence over a leading system message)
	System *string `json:"system,omitempty"`

	// ===== Thinking / Reasoning =====

	// ThinkingEnabled enables extended thinking / reasoning mode
	ThinkingEnabled *bool `json:"thinking_enabled,omitempty"`

	// ThinkingLevel sets the thinking budget: "low", "medium", "high"
	ThinkingLevel *string `json:"thinking_level,omitempty"`

	// ===== OpenAI-style Parameters =====

	// FrequencyPenalty reduces repetition of token sequences (-2.0 to 2.0)
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// PresencePenalty reduces repetition of topics (-2.0 to 2.0)
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// ResponseFormat for structured outputs (JSON mode, etc.)
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// ===== Tool Parameters =====

	// Tools are caller-supplied function tools available to the model
	Tools []Tool `json:"tools,omitempty"`

	// ProviderTools are provider-native (server-executed) tools to enable.
	// Providers ignore tools they do not own; the per-request name mapping
	// resolves collisions between these and function tools.
	ProviderTools []ProviderTool `json:"provider_tools,omitempty"`

	// ToolChoice controls whether/which tools to use
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`

	// ParallelToolCalls allows the model to issue multiple calls at once
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`

	// ===== Provider Routing (OpenRouter) =====

	// WebSearch enables OpenRouter's web plugin for the request
	WebSearch *bool `json:"web_search,omitempty"`

	// FallbackModels lists alternative models if the primary fails
	FallbackModels []string `json:"fallback_models,omitempty"`
}

// ResponseFormat specifies the format for structured outputs
type ResponseFormat struct {
	Type       string      `json:"type"`                  // "text", "json_object", "json_schema"
	JSONSchema interface{} `json:"json_schema,omitempty"` // Schema for structured output
}

// ValidateRequestParams validates request parameters
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil // nil params is valid
	}

	if params.Temperature != nil {
		if *params.Temperature < 0.0 || *params.Temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", *params.Temperature)
		}
	}

	if params.TopP != nil {
		if *params.TopP < 0.0 || *params.TopP > 1.0 {
			return fmt.Errorf("top_p must be between 0.0 and 1.0, got %f", *params.TopP)
		}
	}

	if params.TopK != nil {
		if *params.TopK < 0 {
			return fmt.Errorf("top_k must be non-negative, got %d", *params.TopK)
		}
	}

	if params.MaxTokens != nil {
		if *params.MaxTokens < 1 {
			return fmt.Errorf("max_tokens must be positive, got %d", *params.MaxTokens)
		}
	}

	if params.ThinkingLevel != nil {
		validLevels := map[string]bool{"low": true, "medium": true, "high": true}
		if !validLevels[*params.ThinkingLevel] {
			return fmt.Errorf("thinking_level must be 'low', 'medium', or 'high', got '%s'", *params.ThinkingLevel)
		}
	}

	if params.FrequencyPenalty != nil {
		if *params.FrequencyPenalty < -2.0 || *params.FrequencyPenalty > 2.0 {
			return fmt.Errorf("frequency_penalty must be between -2.0 and 2.0, got %f", *params.FrequencyPenalty)
		}
	}

	if params.PresencePenalty != nil {
		if *params.PresencePenalty < -2.0 || *params.PresencePenalty > 2.0 {
			return fmt.Errorf("presence_penalty must be between -2.0 and 2.0, got %f", *params.PresencePenalty)
		}
	}

	for i, tool := range params.Tools {
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("tool %d: %w", i, err)
		}
	}

	if params.ToolChoice != nil {
		if err := params.ToolChoice.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// GetRequestParamStruct unmarshals a generic map into a typed RequestParams struct
func GetRequestParamStruct(params map[string]interface{}) (*RequestParams, error) {
	if params == nil {
		return &RequestParams{}, nil
	}

	jsonBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var rp RequestParams
	if err := json.Unmarshal(jsonBytes, &rp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	return &rp, nil
}

// GetMaxTokens returns max_tokens with default fallback
func (rp *RequestParams) GetMaxTokens(defaultValue int) int {
	if rp == nil || rp.MaxTokens == nil {
		return defaultValue
	}
	return *rp.MaxTokens
}

// GetTemperature returns temperature with default fallback
func (rp *RequestParams) GetTemperature(defaultValue float64) float64 {
	if rp == nil || rp.Temperature == nil {
		return defaultValue
	}
	return *rp.Temperature
}

// ThinkingRequested reports whether extended thinking is enabled.
func (rp *RequestParams) ThinkingRequested() bool {
	return rp != nil && rp.ThinkingEnabled != nil && *rp.ThinkingEnabled
}

// GetThinkingBudgetTokens converts thinking_level to a token budget.
// low = 2000, medium = 5000, high = 12000. Model-specific budgets come from
// the capability registry; these are the fallback defaults.
func (rp *RequestParams) GetThinkingBudgetTokens() int {
	if rp == nil || rp.ThinkingLevel == nil {
		return 0 // Thinking not enabled
	}

	switch *rp.ThinkingLevel {
	case "low":
		return 2000
	case "medium":
		return 5000
	case "high":
		return 12000
	default:
		return 0
	}
}

// NameMapping builds the per-request tool-name mapping from the configured
// function tools and provider-native tools. Rebuilt on every request; tool
// sets can differ call to call.
func (rp *RequestParams) NameMapping() *ToolNameMapping {
	if rp == nil {
		return NewToolNameMapping(nil, nil)
	}
	return NewToolNameMapping(FunctionToolNames(rp.Tools), ProviderToolRequestNames(rp.ProviderTools))
}
