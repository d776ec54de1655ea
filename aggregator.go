package llmrelay

import (
	"github.com/google/uuid"
)

// ToolCallAggregator merges fragmented tool-call deltas into complete calls.
//
// Providers stream tool calls in pieces: the first fragment for a call
// usually carries the id and name, later fragments often carry only a
// positional index plus an argument substring. One aggregator instance
// serves one in-flight stream; it is not safe for concurrent use (streams
// are consumed sequentially, see the concurrency notes on Stream).
//
// Merge policy:
//   - the first delta for an identity establishes the id (a synthesized
//     "call_<uuid>" when the provider never sends one)
//   - arguments are always concatenated, never overwritten
//   - name is overwritten only by a non-empty incoming name, so late
//     empty-name fragments never erase a known name
type ToolCallAggregator struct {
	calls   map[string]*ToolCall
	order   []string       // ids in first-seen order
	byIndex map[int]string // wire index -> established id
}

// NewToolCallAggregator returns an empty aggregator for one stream.
func NewToolCallAggregator() *ToolCallAggregator {
	return &ToolCallAggregator{
		calls:   make(map[string]*ToolCall),
		byIndex: make(map[int]string),
	}
}

// AddDelta merges a delta identified by its own ID and returns a snapshot of
// the accumulated call. Deltas with an empty ID start a new call under a
// synthesized id; providers that key fragments by position should use
// AddDeltaAt instead.
func (a *ToolCallAggregator) AddDelta(delta ToolCall) *ToolCall {
	id := delta.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	return a.merge(id, delta)
}

// AddDeltaAt merges a delta identified by wire index. The first delta seen
// for an index establishes the identity (preferring the delta's own ID when
// present); subsequent deltas for the same index are routed to that call
// even when they omit the ID, so every returned snapshot carries a stable,
// non-empty ID callers can correlate fragments with.
func (a *ToolCallAggregator) AddDeltaAt(index int, delta ToolCall) *ToolCall {
	id, ok := a.byIndex[index]
	if !ok {
		id = delta.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		a.byIndex[index] = id
	}
	return a.merge(id, delta)
}

func (a *ToolCallAggregator) merge(id string, delta ToolCall) *ToolCall {
	acc, ok := a.calls[id]
	if !ok {
		acc = &ToolCall{ID: id, CallType: ToolCallTypeFunction}
		a.calls[id] = acc
		a.order = append(a.order, id)
	}
	if delta.Function.Name != "" {
		acc.Function.Name = delta.Function.Name
	}
	acc.Function.Arguments += delta.Function.Arguments
	return acc.Clone()
}

// Calls returns all accumulated calls in first-seen order, including calls
// that are still mid-stream.
func (a *ToolCallAggregator) Calls() []ToolCall {
	out := make([]ToolCall, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.calls[id])
	}
	return out
}

// CompletedCalls returns only calls whose name is known. Calls that have
// received argument fragments but no name yet are excluded, which defends
// against out-of-order or malformed wire data when a caller polls early.
func (a *ToolCallAggregator) CompletedCalls() []ToolCall {
	out := make([]ToolCall, 0, len(a.order))
	for _, id := range a.order {
		if a.calls[id].Function.Name == "" {
			continue
		}
		out = append(out, *a.calls[id])
	}
	return out
}

// Len returns the number of distinct calls seen so far.
func (a *ToolCallAggregator) Len() int {
	return len(a.order)
}

// Clear resets all state so the instance can be reused for another stream.
func (a *ToolCallAggregator) Clear() {
	a.calls = make(map[string]*ToolCall)
	a.order = nil
	a.byIndex = make(map[int]string)
}
