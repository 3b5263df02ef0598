package parser

const (
	toolOpenTag  = "<tool>"
	toolCloseTag = "</tool>"
)

// Segment is a piece of streamed output in arrival order.
type Segment struct {
	Text string
	// ToolCall is set for text inside a <tool> block.
	ToolCall bool
	// Closed is set on the segment that ended its <tool> block.
	Closed bool
}

// ToolCallParser separates <tool>...</tool> blocks from message text in a stream.
// Tool call text is the inner XML of the block; the surrounding tags are dropped.
type ToolCallParser struct {
	splitter *tagSplitter
}

// NewToolCallParser creates a new tool call parser.
func NewToolCallParser() *ToolCallParser {
	return &ToolCallParser{splitter: newTagSplitter(toolOpenTag, toolCloseTag)}
}

// Parse processes a content chunk and returns message text and tool call XML
// that can be released so far.
func (p *ToolCallParser) Parse(content string) (message, toolCall string) {
	if content == "" {
		return "", ""
	}
	return p.splitter.feed(content)
}

// Segments processes a content chunk and returns the releasable pieces in order.
func (p *ToolCallParser) Segments(content string) []Segment {
	if content == "" {
		return nil
	}
	raw := p.splitter.segments(content)
	out := make([]Segment, len(raw))
	for i, s := range raw {
		out[i] = Segment{Text: s.text, ToolCall: s.inside, Closed: s.closed}
	}
	return out
}

// InToolCall reports whether the parser is inside an unterminated tool block.
func (p *ToolCallParser) InToolCall() bool {
	return p.splitter.inside
}

// Completed returns the number of tool blocks that have been closed.
func (p *ToolCallParser) Completed() int {
	return p.splitter.closed
}

// Flush returns any buffered content.
func (p *ToolCallParser) Flush() (message, toolCall string) {
	return p.splitter.flush()
}

// Reset resets the parser state for a new stream.
func (p *ToolCallParser) Reset() {
	p.splitter.reset()
}
