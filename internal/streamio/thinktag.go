package streamio

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ThinkSplitter separates inline <think>...</think> reasoning from ordinary
// text in a streamed delta sequence. Some self-hosted/open models emit
// reasoning this way inside plain content regardless of the outer envelope
// style; the tag body must become reasoning deltas and never leak into the
// text channel.
//
// Tags can be split across arbitrary delta boundaries ("<thi" in one chunk,
// "nk>" in the next), so the splitter holds back any trailing bytes that
// could still turn out to be a tag prefix until the next delta or Flush
// resolves them.
type ThinkSplitter struct {
	inThink bool
	pending string
}

// Split consumes one delta and returns the text and thinking portions it
// completes. Either or both may be empty.
func (s *ThinkSplitter) Split(delta string) (text, thinking string) {
	buf := s.pending + delta
	s.pending = ""

	var textOut, thinkOut strings.Builder
	for buf != "" {
		if s.inThink {
			if i := strings.Index(buf, thinkClose); i >= 0 {
				thinkOut.WriteString(buf[:i])
				buf = buf[i+len(thinkClose):]
				s.inThink = false
				continue
			}
			hold := partialSuffixLen(buf, thinkClose)
			thinkOut.WriteString(buf[:len(buf)-hold])
			s.pending = buf[len(buf)-hold:]
			break
		}

		if i := strings.Index(buf, thinkOpen); i >= 0 {
			textOut.WriteString(buf[:i])
			buf = buf[i+len(thinkOpen):]
			s.inThink = true
			continue
		}
		hold := partialSuffixLen(buf, thinkOpen)
		textOut.WriteString(buf[:len(buf)-hold])
		s.pending = buf[len(buf)-hold:]
		break
	}

	return textOut.String(), thinkOut.String()
}

// Flush releases any held-back bytes at end-of-stream. A partial tag prefix
// that never completed is ordinary content after all; an unterminated think
// block stays thinking.
func (s *ThinkSplitter) Flush() (text, thinking string) {
	rest := s.pending
	s.pending = ""
	if rest == "" {
		return "", ""
	}
	if s.inThink {
		return "", rest
	}
	return rest, ""
}

// InThink reports whether the splitter is currently inside a think block.
func (s *ThinkSplitter) InThink() bool {
	return s.inThink
}

// partialSuffixLen returns the length of the longest proper prefix of tag
// that s ends with.
func partialSuffixLen(s, tag string) int {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(s, tag[:k]) {
			return k
		}
	}
	return 0
}
