// Package core turns a provider stream into agent events.
package core

import (
	"strings"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/llm/parser"
	"github.com/entrhq/pilot/pkg/types"
)

// EmitFunc receives events produced while reading a stream.
type EmitFunc func(*types.AgentEvent)

// CompleteFunc receives the accumulated response. content is the message text
// outside any tool block and toolCall the inner XML of the first <tool> block.
type CompleteFunc func(content, thinking, toolCall, role string)

// StreamResult is what ProcessStream accumulated.
type StreamResult struct {
	Content  string
	Thinking string
	ToolCall string
	Role     string
	Err      error
}

// phase tracks which start event is currently open.
type phase int

const (
	phaseNone phase = iota
	phaseThinking
	phaseMessage
	phaseToolCall
)

type streamState struct {
	emit     EmitFunc
	tools    *parser.ToolCallParser
	open     phase
	content  strings.Builder
	thinking strings.Builder
	toolCall strings.Builder
	role     string
	done     bool
}

// ProcessStream drains stream, emitting start/content/end events for
// thinking, message text and tool call XML as they arrive. Anything after
// the first complete tool block is discarded. onComplete, when non-nil, is
// called once with the accumulated response.
func ProcessStream(stream <-chan *llm.StreamChunk, emit EmitFunc, onComplete CompleteFunc) *StreamResult {
	s := &streamState{emit: emit, tools: parser.NewToolCallParser()}
	var streamErr error

	for chunk := range stream {
		if chunk == nil {
			continue
		}
		if chunk.IsError() {
			streamErr = chunk.Error
			s.switchTo(phaseNone)
			emit(types.NewErrorEvent(chunk.Error))
			// Drain so the producer can exit.
			for range stream {
			}
			break
		}
		if chunk.Role != "" && s.role == "" {
			s.role = chunk.Role
		}
		if chunk.Content == "" {
			continue
		}
		if chunk.IsThinking() {
			s.thinkingChunk(chunk.Content)
			continue
		}
		s.messageChunk(chunk.Content)
	}

	if streamErr == nil && !s.done {
		message, toolCall := s.tools.Flush()
		s.route(parser.Segment{Text: message})
		s.route(parser.Segment{Text: toolCall, ToolCall: true})
	}
	s.switchTo(phaseNone)

	res := &StreamResult{
		Content:  strings.TrimSpace(s.content.String()),
		Thinking: s.thinking.String(),
		ToolCall: s.toolCall.String(),
		Role:     s.role,
		Err:      streamErr,
	}
	if onComplete != nil {
		onComplete(res.Content, res.Thinking, res.ToolCall, res.Role)
	}
	return res
}

func (s *streamState) thinkingChunk(text string) {
	if s.done {
		return
	}
	s.switchTo(phaseThinking)
	s.thinking.WriteString(text)
	s.emit(types.NewThinkingContentEvent(text))
}

func (s *streamState) messageChunk(text string) {
	for _, seg := range s.tools.Segments(text) {
		if s.done {
			return
		}
		s.route(seg)
	}
}

func (s *streamState) route(seg parser.Segment) {
	if seg.ToolCall {
		if seg.Text != "" {
			s.switchTo(phaseToolCall)
			s.toolCall.WriteString(seg.Text)
			s.emit(types.NewToolCallContentEvent(seg.Text))
		}
		if seg.Closed {
			s.switchTo(phaseNone)
			s.done = true
		}
		return
	}
	if seg.Text == "" {
		return
	}
	s.switchTo(phaseMessage)
	s.content.WriteString(seg.Text)
	s.emit(types.NewMessageContentEvent(seg.Text))
}

func (s *streamState) switchTo(p phase) {
	if s.open == p {
		return
	}
	switch s.open {
	case phaseThinking:
		s.emit(types.NewThinkingEndEvent())
	case phaseMessage:
		s.emit(types.NewMessageEndEvent())
	case phaseToolCall:
		s.emit(types.NewToolCallEndEvent())
	}
	switch p {
	case phaseThinking:
		s.emit(types.NewThinkingStartEvent())
	case phaseMessage:
		s.emit(types.NewMessageStartEvent())
	case phaseToolCall:
		s.emit(types.NewToolCallStartEvent())
	}
	s.open = p
}
