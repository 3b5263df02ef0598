// Package parser splits streamed LLM output into thinking, message and tool call parts.
package parser

import (
	"github.com/entrhq/pilot/pkg/llm"
)

const (
	thinkingOpenTag  = "<thinking>"
	thinkingCloseTag = "</thinking>"
)

// ThinkingParser separates <thinking> sections from regular content in a stream.
// Tags spanning chunk boundaries are handled.
type ThinkingParser struct {
	splitter *tagSplitter
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{splitter: newTagSplitter(thinkingOpenTag, thinkingCloseTag)}
}

// Parse processes a content chunk. Either return value is nil when the chunk
// produced no content of that kind.
func (p *ThinkingParser) Parse(content string) (thinkingChunk, messageChunk *llm.StreamChunk) {
	if content == "" {
		return nil, nil
	}
	message, thinking := p.splitter.feed(content)
	return toChunks(thinking, message)
}

// IsInThinking returns true if currently inside a thinking section.
func (p *ThinkingParser) IsInThinking() bool {
	return p.splitter.inside
}

// Flush returns any buffered content. Call it once the stream has ended.
func (p *ThinkingParser) Flush() (thinkingChunk, messageChunk *llm.StreamChunk) {
	message, thinking := p.splitter.flush()
	return toChunks(thinking, message)
}

// Reset resets the parser state for a new stream.
func (p *ThinkingParser) Reset() {
	p.splitter.reset()
}

func toChunks(thinking, message string) (*llm.StreamChunk, *llm.StreamChunk) {
	var thinkingChunk, messageChunk *llm.StreamChunk
	if thinking != "" {
		thinkingChunk = &llm.StreamChunk{Content: thinking, Type: llm.ContentTypeThinking}
	}
	if message != "" {
		messageChunk = &llm.StreamChunk{Content: message, Type: llm.ContentTypeMessage}
	}
	return thinkingChunk, messageChunk
}
