package openai

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

func runTranslate(t *testing.T, body string, mapping *llmrelay.ToolNameMapping) []llmrelay.StreamEvent {
	t.Helper()
	if mapping == nil {
		mapping = (&llmrelay.RequestParams{}).NameMapping()
	}
	p := &Provider{}
	events := make(chan llmrelay.StreamEvent, 100)
	go func() {
		defer close(events)
		p.translateStream(strings.NewReader(body), nil, mapping, events)
	}()
	return collectEvents(t, events)
}

// TestTranslateStream_OutputTextDeltas tests text streaming terminated by a
// response.completed envelope.
func TestTranslateStream_OutputTextDeltas(t *testing.T) {
	body := `event: response.output_text.delta
data: {"type":"response.output_text.delta","output_index":0,"delta":"Hel"}

event: response.output_text.delta
data: {"type":"response.output_text.delta","output_index":0,"delta":"lo"}

event: response.completed
data: {"type":"response.completed","response":{"id":"resp_1","model":"gpt-5","status":"completed","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"Hello"}]}],"usage":{"input_tokens":9,"output_tokens":4,"output_tokens_details":{"reasoning_tokens":0}}}}

`
	events := runTranslate(t, body, nil)

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
	// The final response object is authoritative, not the accumulation.
	if final.Response.Text != "Hello" {
		t.Errorf("response text = %q", final.Response.Text)
	}
	if final.Response.Model != "gpt-5" {
		t.Errorf("model = %q", final.Response.Model)
	}
	if final.Response.StopReason != "end_turn" {
		t.Errorf("stop reason = %q", final.Response.StopReason)
	}
	if final.Response.Usage.InputTokens != 9 || final.Response.Usage.OutputTokens != 4 {
		t.Errorf("usage = %+v", final.Response.Usage)
	}
}

// TestTranslateStream_ReasoningDeltas tests both reasoning delta envelope
// kinds.
func TestTranslateStream_ReasoningDeltas(t *testing.T) {
	body := `data: {"type":"response.reasoning_summary_text.delta","delta":"first "}

data: {"type":"response.reasoning_text.delta","delta":"second"}

data: {"type":"response.completed","response":{"id":"resp_2","model":"o3","status":"completed","output":[{"type":"reasoning","summary":[{"type":"summary_text","text":"first second"}]}]}}

`
	events := runTranslate(t, body, nil)

	var thinking string
	for _, ev := range events {
		if ev.Kind == llmrelay.EventThinkingDelta {
			thinking += ev.Delta
		}
	}
	if thinking != "first second" {
		t.Errorf("thinking = %q", thinking)
	}

	final := events[len(events)-1]
	if final.Response.Thinking != "first second" {
		t.Errorf("response thinking = %q", final.Response.Thinking)
	}
}

// TestTranslateStream_FunctionCall tests output_item.added establishing the
// call identity and argument deltas accumulating onto it.
func TestTranslateStream_FunctionCall(t *testing.T) {
	tool, _ := llmrelay.NewCustomTool("lookup", "caller lookup", map[string]interface{}{"type": "object"})
	mapping := (&llmrelay.RequestParams{
		Tools: []llmrelay.Tool{*tool},
		ProviderTools: []llmrelay.ProviderTool{{
			ID:          "vendor.lookup",
			RequestName: "lookup",
		}},
	}).NameMapping()

	body := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"function_call","call_id":"call_x","name":"lookup__1","arguments":""}}

data: {"type":"response.function_call_arguments.delta","output_index":0,"delta":"{\"q\":"}

data: {"type":"response.function_call_arguments.delta","output_index":0,"delta":"\"go\"}"}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"function_call","call_id":"call_x","name":"lookup__1","arguments":"{\"q\":\"go\"}"}}

data: {"type":"response.completed","response":{"id":"resp_3","model":"gpt-5","status":"completed","output":[{"type":"function_call","call_id":"call_x","name":"lookup__1","arguments":"{\"q\":\"go\"}"}]}}

`
	events := runTranslate(t, body, mapping)

	var deltas []llmrelay.StreamEvent
	for _, ev := range events {
		if ev.Kind == llmrelay.EventToolCallDelta {
			deltas = append(deltas, ev)
		}
	}
	if len(deltas) != 3 {
		t.Fatalf("expected 3 tool call deltas, got %d", len(deltas))
	}
	if deltas[0].ToolCall.ID != "call_x" {
		t.Errorf("delta ID = %q", deltas[0].ToolCall.ID)
	}
	if deltas[2].ToolCall.Function.Arguments != `{"q":"go"}` {
		t.Errorf("accumulated arguments = %q", deltas[2].ToolCall.Function.Arguments)
	}

	final := events[len(events)-1]
	if len(final.Response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(final.Response.ToolCalls))
	}
	call := final.Response.ToolCalls[0]
	if call.Function.Name != "lookup" {
		t.Errorf("name = %q, want original name restored", call.Function.Name)
	}
	if final.Response.StopReason != "tool_use" {
		t.Errorf("stop reason = %q", final.Response.StopReason)
	}
}

// TestTranslateStream_DoneItemBackfillsArguments tests the gateway case
// where argument deltas never arrive and output_item.done carries them.
func TestTranslateStream_DoneItemBackfillsArguments(t *testing.T) {
	body := `data: {"type":"response.output_item.added","output_index":0,"item":{"type":"function_call","call_id":"call_y","name":"ping","arguments":""}}

data: {"type":"response.output_item.done","output_index":0,"item":{"type":"function_call","call_id":"call_y","name":"ping","arguments":"{\"host\":\"a\"}"}}

`
	events := runTranslate(t, body, nil)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventCompletion {
		t.Fatalf("final kind = %s", final.Kind)
	}
	if len(final.Response.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(final.Response.ToolCalls))
	}
	if got := final.Response.ToolCalls[0].Function.Arguments; got != `{"host":"a"}` {
		t.Errorf("arguments = %q, want done-item backfill", got)
	}
}

// TestTranslateStream_Incomplete tests max-token truncation mapping.
func TestTranslateStream_Incomplete(t *testing.T) {
	body := `data: {"type":"response.output_text.delta","delta":"partial"}

data: {"type":"response.incomplete","response":{"id":"resp_4","model":"gpt-5","status":"incomplete","incomplete_details":{"reason":"max_output_tokens"},"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"partial"}]}]}}

`
	events := runTranslate(t, body, nil)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventCompletion {
		t.Fatalf("final kind = %s", final.Kind)
	}
	if final.Response.StopReason != "max_tokens" {
		t.Errorf("stop reason = %q, want max_tokens", final.Response.StopReason)
	}
}

// TestTranslateStream_Failed tests the response.failed terminal envelope.
func TestTranslateStream_Failed(t *testing.T) {
	body := `data: {"type":"response.failed","response":{"id":"resp_5","status":"failed","error":{"code":"server_error","message":"model blew up"}}}

`
	events := runTranslate(t, body, nil)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventError {
		t.Fatalf("final kind = %s, want error", final.Kind)
	}
	if !strings.Contains(final.Err.Error(), "model blew up") {
		t.Errorf("error = %v", final.Err)
	}
}

// TestTranslateStream_EOFWithoutCompleted tests the best-effort completion
// when the stream drops before response.completed.
func TestTranslateStream_EOFWithoutCompleted(t *testing.T) {
	body := `data: {"type":"response.output_text.delta","delta":"cut off"}
`
	events := runTranslate(t, body, nil)

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

// TestTranslateStream_ToleratesDoneSentinel tests that a stray [DONE] line
// from a gateway is ignored rather than treated as terminal.
func TestTranslateStream_ToleratesDoneSentinel(t *testing.T) {
	body := `data: {"type":"response.output_text.delta","delta":"hi"}

data: {"type":"response.completed","response":{"id":"resp_6","model":"gpt-5","status":"completed","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"hi"}]}]}}

data: [DONE]
`
	events := runTranslate(t, body, nil)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventCompletion {
		t.Fatalf("final kind = %s", final.Kind)
	}
	if final.Response.Text != "hi" {
		t.Errorf("text = %q", final.Response.Text)
	}
}

// TestTranslateStream_EmptyStream tests that a body with no events yields a
// retryable error.
func TestTranslateStream_EmptyStream(t *testing.T) {
	events := runTranslate(t, ": ping\n\n", nil)

	final := events[len(events)-1]
	if final.Kind != llmrelay.EventError {
		t.Fatalf("final kind = %s, want error", final.Kind)
	}
	if !llmrelay.IsRetryable(final.Err) {
		t.Error("empty-stream error should be retryable")
	}
}
