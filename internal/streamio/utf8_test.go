package streamio

import (
	"testing"
	"unicode/utf8"
)

func TestUTF8Decoder_ASCIIPassesThrough(t *testing.T) {
	var d UTF8Decoder
	if got := d.Decode([]byte("hello")); got != "hello" {
		t.Errorf("Decode = %q, want hello", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestUTF8Decoder_SplitMultiByte(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"two-byte é", "café"},
		{"three-byte CJK", "日本語"},
		{"four-byte emoji", "ok 🎉 done"},
		{"mixed", "naïve 世界 🚀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(tt.text)
			// Feed every possible split point one byte at a time; output
			// concatenation must equal the input and every intermediate
			// result must be valid UTF-8.
			var d UTF8Decoder
			var out string
			for i := range raw {
				chunk := d.Decode(raw[i : i+1])
				if !utf8.ValidString(chunk) {
					t.Fatalf("byte %d: Decode returned invalid UTF-8 %q", i, chunk)
				}
				out += chunk
			}
			out += d.Flush()
			if out != tt.text {
				t.Errorf("reassembled %q, want %q", out, tt.text)
			}
		})
	}
}

func TestUTF8Decoder_HoldsIncompleteSuffix(t *testing.T) {
	var d UTF8Decoder

	// "é" is 0xC3 0xA9. Send the lead byte only.
	if got := d.Decode([]byte{'a', 0xC3}); got != "a" {
		t.Errorf("Decode = %q, want lead byte held back", got)
	}
	if d.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", d.Pending())
	}

	if got := d.Decode([]byte{0xA9, 'b'}); got != "éb" {
		t.Errorf("Decode = %q, want éb", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after completion, want 0", d.Pending())
	}
}

func TestUTF8Decoder_FlushDropsInvalidBytes(t *testing.T) {
	var d UTF8Decoder

	// A 4-byte lead with only two continuation bytes never completes.
	d.Decode([]byte{0xF0, 0x9F})
	if got := d.Flush(); got != "" {
		t.Errorf("Flush of truncated sequence = %q, want dropped", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after Flush, want 0", d.Pending())
	}
}

func TestUTF8Decoder_CompletionReleasesHeldBytes(t *testing.T) {
	var d UTF8Decoder
	if got := d.Decode([]byte{0xE4, 0xB8}); got != "" { // first two bytes of 世
		t.Errorf("Decode = %q, want held back", got)
	}
	if got := d.Decode([]byte{0x96}); got != "世" {
		t.Errorf("Decode = %q, want 世", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 once sequence completed", d.Pending())
	}
}

func TestUTF8Decoder_EmptyInput(t *testing.T) {
	var d UTF8Decoder
	d.Decode([]byte{0xC3}) // hold one byte
	if got := d.Decode(nil); got != "" {
		t.Errorf("Decode(nil) = %q, want empty", got)
	}
	if d.Pending() != 1 {
		t.Errorf("Pending() = %d, empty input must not disturb the buffer", d.Pending())
	}
}

func TestIncompleteSuffixLen(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		want int
	}{
		{"empty", nil, 0},
		{"ascii", []byte("abc"), 0},
		{"complete two-byte", []byte{0xC3, 0xA9}, 0},
		{"truncated two-byte", []byte{'a', 0xC3}, 1},
		{"truncated three-byte one of three", []byte{0xE4}, 1},
		{"truncated three-byte two of three", []byte{0xE4, 0xB8}, 2},
		{"truncated four-byte three of four", []byte{0xF0, 0x9F, 0x8E}, 3},
		{"complete four-byte", []byte{0xF0, 0x9F, 0x8E, 0x89}, 0},
		{"invalid lead", []byte{0xFF}, 0},
		{"orphaned continuations", []byte{0x80, 0x80, 0x80, 0x80}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := incompleteSuffixLen(tt.b); got != tt.want {
				t.Errorf("incompleteSuffixLen(% x) = %d, want %d", tt.b, got, tt.want)
			}
		})
	}
}
