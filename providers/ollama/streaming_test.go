package ollama

import (
	"strings"
	"testing"

	llmrelay "github.com/relaylabs/relay-llm-go"
)

func collectEvents(t *testing.T, events <-chan llmrelay.StreamEvent) []llmrelay.StreamEvent {
	t.Helper()
	var out []llmrelay.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	if len(out) == 0 {
		t.Fatal("stream produced no events")
	}
	if !out[len(out)-1].IsTerminal() {
		t.Fatalf("last event kind = %s, want terminal", out[len(out)-1].Kind)
	}
	for _, ev := range out[:len(out)-1] {
		if ev.IsTerminal() {
			t.Fatalf("terminal event %s before end of stream", ev.Kind)
		}
	}
	return out
}

func runTranslate(t *testing.T, body string) []llmrelay.StreamEvent {
	t.Helper()
	p := &Provider{}
	events := make(chan llmrelay.StreamEvent, 100)
	go func() {
		defer close(events)
		p.translateStream(strings.NewReader(body), nil, events)
	}()
	return collectEvents(t, events)
}

// TestTranslateStream_JSONL tests plain JSONL text streaming with a done line.
func TestTranslateStream_JSONL(t *testing.T) {
	body := `{"model":"llama3.2","message":{"role":"assistant","content":"Hel"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":"lo"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","prompt_eval_count":7,"eval_count":2}
`
	events := runTranslate(t, body)

	var text string
	for _, ev := range events {
		if ev.Kind == llmrelay.EventTextDelta {
			text += ev.Delta
		}
	}
	if text != "Hello" {
		t.Errorf("text = %q, want Hello", text)
	}

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventCompletion {
		t.Fatalf("final kind = %s", final.Kind)
	}
	if final.Response.StopReason != "end_turn" {
		t.Errorf("stop reason = %q, want end_turn", final.Response.StopReason)
	}
	if final.Response.Model != "llama3.2" {
		t.Errorf("model = %q", final.Response.Model)
	}
	if final.Response.Usage.InputTokens != 7 || final.Response.Usage.OutputTokens != 2 {
		t.Errorf("usage = %+v", final.Response.Usage)
	}
}

// TestTranslateStream_ThinkingField tests the native thinking field used by
// reasoning models when think=true.
func TestTranslateStream_ThinkingField(t *testing.T) {
	body := `{"message":{"role":"assistant","thinking":"let me see"},"done":false}
{"message":{"role":"assistant","content":"four"},"done":true,"done_reason":"stop"}
`
	events := runTranslate(t, body)

	final := events[len(events)-1]
	if final.Response.Thinking != "let me see" {
		t.Errorf("thinking = %q", final.Response.Thinking)
	}
	if final.Response.Text != "four" {
		t.Errorf("text = %q", final.Response.Text)
	}
}

// TestTranslateStream_InlineThinkTags tests <think> tags in content from
// models without a native thinking field.
func TestTranslateStream_InlineThinkTags(t *testing.T) {
	body := `{"message":{"role":"assistant","content":"<think>mull"},"done":false}
{"message":{"role":"assistant","content":"ing</think>done"},"done":true,"done_reason":"stop"}
`
	events := runTranslate(t, body)

	var text, thinking string
	for _, ev := range events {
		switch ev.Kind {
		case llmrelay.EventTextDelta:
			text += ev.Delta
		case llmrelay.EventThinkingDelta:
			thinking += ev.Delta
		}
	}
	if text != "done" {
		t.Errorf("text = %q, want done", text)
	}
	if thinking != "mulling" {
		t.Errorf("thinking = %q, want mulling", thinking)
	}
}

// TestTranslateStream_ToolCalls tests tool calls with synthesized ids, since
// Ollama sends none on the wire.
func TestTranslateStream_ToolCalls(t *testing.T) {
	body := `{"message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"get_weather","arguments":{"city":"Paris"}}}]},"done":false}
{"message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}
`
	events := runTranslate(t, body)

	final := events[len(events)-1]
	if len(final.Response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(final.Response.ToolCalls))
	}
	call := final.Response.ToolCalls[0]
	if call.Function.Name != "get_weather" {
		t.Errorf("name = %q", call.Function.Name)
	}
	if !strings.HasPrefix(call.ID, "call_") {
		t.Errorf("ID = %q, want synthesized call_ id", call.ID)
	}
	args, err := call.ArgumentsJSON()
	if err != nil {
		t.Fatalf("ArgumentsJSON: %v", err)
	}
	if args["city"] != "Paris" {
		t.Errorf("args = %v", args)
	}
	if final.Response.StopReason != "tool_use" {
		t.Errorf("stop reason = %q, want tool_use", final.Response.StopReason)
	}
}

// TestTranslateStream_ErrorLine tests an error object terminating the stream.
func TestTranslateStream_ErrorLine(t *testing.T) {
	body := `{"message":{"role":"assistant","content":"part"},"done":false}
{"error":"model runner has unexpectedly stopped"}
`
	events := runTranslate(t, body)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventError {
		t.Fatalf("final kind = %s, want error", final.Kind)
	}
	if !strings.Contains(final.Err.Error(), "model runner has unexpectedly stopped") {
		t.Errorf("error = %v", final.Err)
	}
}

// TestTranslateStream_EOFWithoutDone tests the fallback completion when the
// connection drops before the done line, including a final line with no
// trailing newline.
func TestTranslateStream_EOFWithoutDone(t *testing.T) {
	body := `{"message":{"role":"assistant","content":"cut "},"done":false}
{"message":{"role":"assistant","content":"off"},"done":false}`
	events := runTranslate(t, body)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventCompletion {
		t.Fatalf("final kind = %s, want completion", final.Kind)
	}
	if final.Response.Text != "cut off" {
		t.Errorf("text = %q", final.Response.Text)
	}
	if final.Response.StopReason != "end_turn" {
		t.Errorf("stop reason = %q", final.Response.StopReason)
	}
}

// TestTranslateStream_EmptyStream tests that an empty body yields a
// retryable error.
func TestTranslateStream_EmptyStream(t *testing.T) {
	events := runTranslate(t, "")

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventError {
		t.Fatalf("final kind = %s, want error", final.Kind)
	}
	if !llmrelay.IsRetryable(final.Err) {
		t.Error("empty-stream error should be retryable")
	}
}
