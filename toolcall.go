package llmrelay

import "encoding/json"

// ToolCallType is the only call type currently on the wire.
const ToolCallTypeFunction = "function"

// FunctionCall is the function portion of a tool call.
type FunctionCall struct {
	// Name is the function name as the caller knows it
	Name string `json:"name"`

	// Arguments is a JSON-encoded argument string. During streaming it is
	// built incrementally and is only guaranteed to parse once the call is
	// complete (name known and no more deltas expected).
	Arguments string `json:"arguments"`
}

// ToolCall is a model-requested invocation of a caller-supplied function.
// Fragments of a single call may arrive across many stream frames; the
// aggregator reassembles them under a stable ID.
type ToolCall struct {
	// ID identifies the call. Providers that omit ids get a synthesized
	// "call_<uuid>" so fragments can still be correlated.
	ID string `json:"id"`

	// CallType is always "function"
	CallType string `json:"type"`

	// Function carries the name and (possibly partial) JSON arguments
	Function FunctionCall `json:"function"`
}

// ArgumentsJSON parses the accumulated arguments string.
// Returns an error while the call is still mid-stream and the JSON is
// truncated; callers should only invoke this on completed calls.
func (c *ToolCall) ArgumentsJSON() (map[string]interface{}, error) {
	input := make(map[string]interface{})
	if c.Function.Arguments == "" {
		return input, nil
	}
	if err := json.Unmarshal([]byte(c.Function.Arguments), &input); err != nil {
		return nil, err
	}
	return input, nil
}

// Clone returns a copy safe to hand to consumers while the aggregator keeps
// mutating its own accumulated state.
func (c *ToolCall) Clone() *ToolCall {
	cp := *c
	return &cp
}
