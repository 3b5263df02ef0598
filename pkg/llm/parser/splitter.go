package parser

import "strings"

// segment is a run of text on one side of a tag pair. closed marks the
// segment that ended with the closing tag.
type segment struct {
	text   string
	inside bool
	closed bool
}

// tagSplitter separates streamed text into the parts outside and inside a
// pair of literal tags. Tags may be split across chunks: any trailing text
// that could still become the awaited tag is held back until the next feed.
type tagSplitter struct {
	open    string
	close   string
	inside  bool
	closed  int
	pending string
}

func newTagSplitter(open, close string) *tagSplitter {
	return &tagSplitter{open: open, close: close}
}

// segments consumes content and returns the releasable text in stream order.
func (s *tagSplitter) segments(content string) []segment {
	s.pending += content

	var out []segment
	for {
		tag := s.open
		if s.inside {
			tag = s.close
		}

		if idx := strings.Index(s.pending, tag); idx >= 0 {
			text := s.pending[:idx]
			s.pending = s.pending[idx+len(tag):]
			if s.inside {
				s.closed++
				out = append(out, segment{text: text, inside: true, closed: true})
			} else if text != "" {
				out = append(out, segment{text: text})
			}
			s.inside = !s.inside
			continue
		}

		keep := partialTagSuffix(s.pending, tag)
		if text := s.pending[:len(s.pending)-keep]; text != "" {
			out = append(out, segment{text: text, inside: s.inside})
		}
		s.pending = s.pending[len(s.pending)-keep:]
		return out
	}
}

// feed is segments collapsed into outside and inside text.
func (s *tagSplitter) feed(content string) (outside, inside string) {
	var out, in strings.Builder
	for _, seg := range s.segments(content) {
		if seg.inside {
			in.WriteString(seg.text)
		} else {
			out.WriteString(seg.text)
		}
	}
	return out.String(), in.String()
}

// flush releases whatever is still held back.
func (s *tagSplitter) flush() (outside, inside string) {
	text := s.pending
	s.pending = ""
	if s.inside {
		return "", text
	}
	return text, ""
}

func (s *tagSplitter) reset() {
	s.inside = false
	s.closed = 0
	s.pending = ""
}

// partialTagSuffix returns the length of the longest suffix of text that is a
// proper prefix of tag.
func partialTagSuffix(text, tag string) int {
	n := len(tag) - 1
	if n > len(text) {
		n = len(text)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(text, tag[:n]) {
			return n
		}
	}
	return 0
}
