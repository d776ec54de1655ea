package llmrelay

// StreamEventKind discriminates the StreamEvent union.
// Exactly one payload field of StreamEvent is meaningful per kind.
type StreamEventKind string

const (
	// EventTextDelta carries an incremental fragment of answer text.
	EventTextDelta StreamEventKind = "text_delta"

	// EventThinkingDelta carries an incremental fragment of reasoning text.
	EventThinkingDelta StreamEventKind = "thinking_delta"

	// EventToolCallDelta carries a tool-call fragment. The ToolCall field is
	// the accumulated call so far (stable id, possibly partial arguments).
	EventToolCallDelta StreamEventKind = "tool_call_delta"

	// EventCompletion is the successful terminal event. The Response field
	// holds the assembled ChatResponse. Emitted at most once per stream.
	EventCompletion StreamEventKind = "completion"

	// EventError is the failure terminal event. Emitted at most once per
	// stream, and never after EventCompletion.
	EventError StreamEventKind = "error"
)

// StreamEvent is a single normalized event in a streaming response.
// Providers translate their wire formats into this union; consumers switch
// on Kind and read the matching field.
//
// Terminal guarantee: every stream ends with exactly one EventCompletion or
// EventError, never both and never neither. Streaming calls never fail
// outside the stream - transport failures become an EventError so iteration
// loops can use a single consumption pattern.
//
// Usage:
//
//	for event := range events {
//	    switch event.Kind {
//	    case llmrelay.EventTextDelta:
//	        fmt.Print(event.Delta)
//	    case llmrelay.EventToolCallDelta:
//	        track(event.ToolCall)
//	    case llmrelay.EventCompletion:
//	        use(event.Response)
//	    case llmrelay.EventError:
//	        return event.Err
//	    }
//	}
type StreamEvent struct {
	// Kind discriminates which payload field is set
	Kind StreamEventKind

	// Delta contains incremental text (EventTextDelta) or reasoning
	// (EventThinkingDelta) content
	Delta string

	// ToolCall contains the accumulated tool call for EventToolCallDelta
	ToolCall *ToolCall

	// Response contains the final response for EventCompletion
	Response *ChatResponse

	// Err contains the failure for EventError
	Err error
}

// TextDeltaEvent builds an EventTextDelta.
func TextDeltaEvent(delta string) StreamEvent {
	return StreamEvent{Kind: EventTextDelta, Delta: delta}
}

// ThinkingDeltaEvent builds an EventThinkingDelta.
func ThinkingDeltaEvent(delta string) StreamEvent {
	return StreamEvent{Kind: EventThinkingDelta, Delta: delta}
}

// ToolCallDeltaEvent builds an EventToolCallDelta.
func ToolCallDeltaEvent(call *ToolCall) StreamEvent {
	return StreamEvent{Kind: EventToolCallDelta, ToolCall: call}
}

// CompletionEvent builds the successful terminal event.
func CompletionEvent(resp *ChatResponse) StreamEvent {
	return StreamEvent{Kind: EventCompletion, Response: resp}
}

// ErrorEvent builds the failure terminal event.
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Kind: EventError, Err: err}
}

// IsTerminal reports whether this event ends the stream.
func (e StreamEvent) IsTerminal() bool {
	return e.Kind == EventCompletion || e.Kind == EventError
}
