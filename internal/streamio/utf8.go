// Package streamio contains the byte-level plumbing shared by the provider
// stream translators: incremental UTF-8 decoding and SSE/JSONL frame
// parsing. One decoder/parser instance serves one stream; neither is safe
// for concurrent use.
package streamio

import (
	"unicode/utf8"
)

// UTF8Decoder incrementally decodes raw byte chunks into strings, buffering
// an incomplete trailing multi-byte sequence until its continuation bytes
// arrive in a later chunk. Decode never returns a string ending in a
// truncated code point.
type UTF8Decoder struct {
	buf []byte
}

// Decode appends p to the internal buffer, returns the longest prefix that
// does not end mid-sequence, and retains the remainder for the next call.
// Empty input returns "" without touching the buffer.
func (d *UTF8Decoder) Decode(p []byte) string {
	if len(p) == 0 {
		return ""
	}

	d.buf = append(d.buf, p...)

	hold := incompleteSuffixLen(d.buf)
	cut := len(d.buf) - hold
	out := string(d.buf[:cut])

	// Copy the held-back suffix rather than re-slicing so the next append
	// cannot clobber bytes already returned.
	rest := make([]byte, hold)
	copy(rest, d.buf[cut:])
	d.buf = rest

	return out
}

// Flush force-decodes and clears any remaining buffered bytes. Called at
// end-of-stream. Bytes that do not form valid UTF-8 are dropped rather than
// surfaced as an error: malformed trailing bytes must not kill an otherwise
// healthy stream.
func (d *UTF8Decoder) Flush() string {
	if len(d.buf) == 0 {
		return ""
	}

	b := d.buf
	d.buf = nil

	if utf8.Valid(b) {
		return string(b)
	}

	// Lossy fallback: keep decodable runes, skip invalid bytes.
	out := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			b = b[1:]
			continue
		}
		out = append(out, r)
		b = b[size:]
	}
	return string(out)
}

// Pending returns the number of buffered bytes awaiting continuation.
func (d *UTF8Decoder) Pending() int {
	return len(d.buf)
}

// incompleteSuffixLen returns how many trailing bytes of b belong to a
// truncated multi-byte sequence, or 0 if b ends on a code point boundary.
// Scans backward at most utf8.UTFMax bytes: a lead byte further back than
// that heads a sequence that is complete (or invalid, which decoding
// handles on its own).
func incompleteSuffixLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && len(b)-i <= utf8.UTFMax; i-- {
		c := b[i]

		if c < 0x80 {
			// Single-byte code point: everything up to here decodes.
			return 0
		}

		if c&0xC0 == 0x80 {
			// Continuation byte, keep scanning for its lead.
			continue
		}

		// Lead byte: expected sequence length from its high bits.
		var size int
		switch {
		case c&0xE0 == 0xC0:
			size = 2
		case c&0xF0 == 0xE0:
			size = 3
		case c&0xF8 == 0xF0:
			size = 4
		default:
			// Invalid lead byte, nothing to wait for.
			return 0
		}

		if have := len(b) - i; have < size {
			return have
		}
		return 0
	}

	// Only continuation bytes in the window: orphaned, not truncated.
	return 0
}
