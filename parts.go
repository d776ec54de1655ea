package llmrelay

// StreamPartKind discriminates the StreamPart union.
type StreamPartKind string

const (
	PartTextStart        StreamPartKind = "text_start"
	PartTextDelta        StreamPartKind = "text_delta"
	PartTextEnd          StreamPartKind = "text_end"
	PartReasoningStart   StreamPartKind = "reasoning_start"
	PartReasoningDelta   StreamPartKind = "reasoning_delta"
	PartReasoningEnd     StreamPartKind = "reasoning_end"
	PartToolCallStart    StreamPartKind = "tool_call_start"
	PartToolCallDelta    StreamPartKind = "tool_call_delta"
	PartToolCallEnd      StreamPartKind = "tool_call_end"
	PartToolResult       StreamPartKind = "tool_result"
	PartProviderMetadata StreamPartKind = "provider_metadata"
	PartFinish           StreamPartKind = "finish"
	PartError            StreamPartKind = "error"
)

// StreamPart is the richer streaming representation with explicit block
// boundaries, produced by AdaptEvents from a raw StreamEvent stream.
//
// Invariants:
//   - every *Start part has a matching *End part before PartFinish
//   - start/delta/end nesting is never overlapped: there are no two
//     concurrent text blocks (tool calls may interleave by id)
//   - PartFinish or PartError is the terminal part, emitted exactly once
//   - PartError does not close open blocks; the error already signals
//     abnormal termination
type StreamPart struct {
	// Kind discriminates which payload fields are set
	Kind StreamPartKind

	// Delta contains incremental text for PartTextDelta / PartReasoningDelta
	Delta string

	// FullText contains the accumulated block text for PartTextEnd /
	// PartReasoningEnd
	FullText string

	// ToolCall contains the accumulated call for PartToolCallStart /
	// PartToolCallDelta
	ToolCall *ToolCall

	// ToolCallID identifies the closed call for PartToolCallEnd
	ToolCallID string

	// Result contains tool output for PartToolResult
	Result string

	// Metadata contains provider-specific data for PartProviderMetadata
	Metadata map[string]interface{}

	// Response contains the final response for PartFinish
	Response *ChatResponse

	// Err contains the failure for PartError
	Err error
}

// IsTerminal reports whether this part ends the stream.
func (p StreamPart) IsTerminal() bool {
	return p.Kind == PartFinish || p.Kind == PartError
}
