package llmrelay

// Usage holds token accounting for a request/response pair.
type Usage struct {
	// InputTokens is the number of tokens in the input
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the number of tokens in the output
	OutputTokens int `json:"output_tokens"`

	// ThinkingTokens is the reasoning-specific token count, when the
	// provider reports it separately (0 otherwise)
	ThinkingTokens int `json:"thinking_tokens,omitempty"`
}

// ChatResponse contains the provider's normalized response.
// For streaming calls this is the payload of the terminal Completion event,
// assembled from all buffered per-stream state.
type ChatResponse struct {
	// Text is the answer text
	Text string `json:"text"`

	// Thinking is the accumulated reasoning text, if the model exposed any
	Thinking string `json:"thinking,omitempty"`

	// ToolCalls are the completed tool calls requested by the model.
	// Arguments are fully accumulated and parseable here.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Model is the model that was used (may differ from request if aliased)
	Model string `json:"model"`

	// StopReason indicates why generation stopped
	// (e.g., "end_turn", "max_tokens", "tool_use")
	StopReason string `json:"stop_reason"`

	// Usage holds token counts. Some providers omit usage on streamed
	// responses, in which case counts are zero.
	Usage Usage `json:"usage"`

	// ProviderMetadata contains provider-specific response data that does
	// not fit the normalized fields (stop_sequence, cache token counts,
	// annotation payloads, raw finish metadata, ...)
	ProviderMetadata map[string]interface{} `json:"provider_metadata,omitempty"`
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
