package streamio

import (
	"encoding/json"
	"strings"
)

// Frame is one parsed record from an SSE or JSONL stream.
type Frame struct {
	// Event is the SSE event name from a preceding "event:" line, "" if none
	Event string

	// Data is the JSON payload. Valid JSON whenever Done is false.
	Data json.RawMessage

	// Done marks the literal "data: [DONE]" terminator used by
	// chat-completions-style streams. Data is nil on a done frame.
	Done bool
}

// FrameParser splits raw text chunks into discrete frames, buffering any
// trailing partial line across Parse calls. It accepts both SSE framing
// ("event:"/"data:" lines) and bare newline-delimited JSON.
//
// Malformed JSON payloads are silently skipped, never surfaced: one bad
// frame from a vendor glitch must not kill an otherwise healthy stream.
type FrameParser struct {
	pending string // text after the last newline seen so far
	event   string // current event name, applied to the next data line
}

// Parse accumulates chunk and returns all frames completed by it, in
// arrival order. A trailing partial line (no newline yet) is retained for
// the next call.
func (p *FrameParser) Parse(chunk string) []Frame {
	if chunk == "" {
		return nil
	}

	text := p.pending + chunk
	lines := strings.Split(text, "\n")
	p.pending = lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	var frames []Frame
	for _, line := range lines {
		if f, ok := p.parseLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Flush processes any buffered partial line as if it were terminated.
// Called at end-of-stream for JSONL bodies whose final record has no
// trailing newline.
func (p *FrameParser) Flush() []Frame {
	if p.pending == "" {
		return nil
	}
	line := p.pending
	p.pending = ""

	if f, ok := p.parseLine(line); ok {
		return []Frame{f}
	}
	return nil
}

func (p *FrameParser) parseLine(line string) (Frame, bool) {
	line = strings.TrimSuffix(line, "\r")

	if line == "" {
		// Blank line ends an SSE frame; any dangling event name no longer
		// applies.
		p.event = ""
		return Frame{}, false
	}

	if strings.HasPrefix(line, ":") {
		// SSE comment / keep-alive
		return Frame{}, false
	}

	if name, ok := strings.CutPrefix(line, "event:"); ok {
		p.event = strings.TrimSpace(name)
		return Frame{}, false
	}

	payload := line
	if data, ok := strings.CutPrefix(line, "data:"); ok {
		// Strip at most one leading space after the colon.
		payload = strings.TrimPrefix(data, " ")
	} else if !looksLikeJSON(payload) {
		// Neither an SSE field nor a JSONL record.
		return Frame{}, false
	}

	event := p.event
	p.event = ""

	if payload == "[DONE]" {
		return Frame{Event: event, Done: true}, true
	}

	if !json.Valid([]byte(payload)) {
		// Malformed frame: skip, keep the stream alive.
		return Frame{}, false
	}

	return Frame{Event: event, Data: json.RawMessage(payload)}, true
}

// looksLikeJSON reports whether a bare line plausibly starts a JSONL record.
func looksLikeJSON(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
