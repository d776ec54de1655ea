package llmrelay

import "strings"

// AdaptEvents converts a low-level StreamEvent stream into the richer
// StreamPart stream, inserting explicit Start/End boundaries around text,
// reasoning, and tool-call runs.
//
// The adapter is a single-pass, stateful transducer. On the first TextDelta
// it emits PartTextStart before forwarding the delta; likewise for the first
// ThinkingDelta and the first ToolCallDelta per call id. On Completion it
// closes any still-open blocks (text, then reasoning, then tool calls, in
// that order) before emitting PartFinish, so every Start is guaranteed a
// matching End. On Error it forwards PartError without closing open blocks.
//
// Event order is preserved; synthetic boundary parts are inserted inline.
// The returned channel is closed after the terminal part.
func AdaptEvents(events <-chan StreamEvent) <-chan StreamPart {
	parts := make(chan StreamPart, 10) // Buffered to prevent blocking

	go func() {
		defer close(parts)

		var (
			inText      bool
			inThinking  bool
			text        strings.Builder
			thinking    strings.Builder
			startedIDs  []string // tool-call ids in start order
			startedSeen = make(map[string]bool)
		)

		closeText := func() {
			if inText {
				parts <- StreamPart{Kind: PartTextEnd, FullText: text.String()}
				inText = false
			}
		}
		closeThinking := func() {
			if inThinking {
				parts <- StreamPart{Kind: PartReasoningEnd, FullText: thinking.String()}
				inThinking = false
			}
		}

		for event := range events {
			switch event.Kind {
			case EventTextDelta:
				if !inText {
					parts <- StreamPart{Kind: PartTextStart}
					inText = true
				}
				text.WriteString(event.Delta)
				parts <- StreamPart{Kind: PartTextDelta, Delta: event.Delta}

			case EventThinkingDelta:
				if !inThinking {
					parts <- StreamPart{Kind: PartReasoningStart}
					inThinking = true
				}
				thinking.WriteString(event.Delta)
				parts <- StreamPart{Kind: PartReasoningDelta, Delta: event.Delta}

			case EventToolCallDelta:
				if event.ToolCall == nil {
					continue
				}
				if !startedSeen[event.ToolCall.ID] {
					startedSeen[event.ToolCall.ID] = true
					startedIDs = append(startedIDs, event.ToolCall.ID)
					parts <- StreamPart{Kind: PartToolCallStart, ToolCall: event.ToolCall}
					continue
				}
				parts <- StreamPart{Kind: PartToolCallDelta, ToolCall: event.ToolCall}

			case EventCompletion:
				// Close order: text, reasoning, tool calls
				closeText()
				closeThinking()
				for _, id := range startedIDs {
					parts <- StreamPart{Kind: PartToolCallEnd, ToolCallID: id}
				}
				if event.Response != nil && len(event.Response.ProviderMetadata) > 0 {
					parts <- StreamPart{Kind: PartProviderMetadata, Metadata: event.Response.ProviderMetadata}
				}
				parts <- StreamPart{Kind: PartFinish, Response: event.Response}
				return

			case EventError:
				parts <- StreamPart{Kind: PartError, Err: event.Err}
				return
			}
		}

		// Upstream closed without a terminal event. The translators
		// guarantee a terminal, but a misbehaving source must not leave
		// part consumers hanging without one.
		closeText()
		closeThinking()
		for _, id := range startedIDs {
			parts <- StreamPart{Kind: PartToolCallEnd, ToolCallID: id}
		}
		parts <- StreamPart{Kind: PartFinish, Response: &ChatResponse{
			Text:     text.String(),
			Thinking: thinking.String(),
		}}
	}()

	return parts
}
