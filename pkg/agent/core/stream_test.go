package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

func feed(chunks ...*llm.StreamChunk) <-chan *llm.StreamChunk {
	ch := make(chan *llm.StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func msg(s string) *llm.StreamChunk {
	return &llm.StreamChunk{Content: s, Type: llm.ContentTypeMessage}
}

func think(s string) *llm.StreamChunk {
	return &llm.StreamChunk{Content: s, Type: llm.ContentTypeThinking}
}

func collect() (*[]*types.AgentEvent, EmitFunc) {
	var events []*types.AgentEvent
	return &events, func(e *types.AgentEvent) { events = append(events, e) }
}

func eventTypes(events []*types.AgentEvent) []types.AgentEventType {
	out := make([]types.AgentEventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestProcessStream_FullResponse(t *testing.T) {
	events, emit := collect()

	var gotContent, gotThinking, gotTool, gotRole string
	res := ProcessStream(feed(
		&llm.StreamChunk{Role: "assistant", Content: "need the feed", Type: llm.ContentTypeThinking},
		msg("Opening LinkedIn. <to"),
		msg("ol><tool_name>browser_navigate</tool_name>"),
		msg("<arguments><url>https://www.linkedin.com</url></arguments></tool> trailing"),
		&llm.StreamChunk{Finished: true},
	), emit, func(content, thinking, toolCall, role string) {
		gotContent, gotThinking, gotTool, gotRole = content, thinking, toolCall, role
	})

	assert.NoError(t, res.Err)
	assert.Equal(t, "Opening LinkedIn.", gotContent)
	assert.Equal(t, "need the feed", gotThinking)
	assert.Equal(t, "<tool_name>browser_navigate</tool_name><arguments><url>https://www.linkedin.com</url></arguments>", gotTool)
	assert.Equal(t, "assistant", gotRole)
	assert.Equal(t, gotTool, res.ToolCall)

	assert.Equal(t, []types.AgentEventType{
		types.EventTypeThinkingStart,
		types.EventTypeThinkingContent,
		types.EventTypeThinkingEnd,
		types.EventTypeMessageStart,
		types.EventTypeMessageContent,
		types.EventTypeMessageEnd,
		types.EventTypeToolCallStart,
		types.EventTypeToolCallContent,
		types.EventTypeToolCallContent,
		types.EventTypeToolCallEnd,
	}, eventTypes(*events))
}

func TestProcessStream_MessageOnly(t *testing.T) {
	events, emit := collect()
	res := ProcessStream(feed(msg("All "), msg("done.")), emit, nil)

	assert.Equal(t, "All done.", res.Content)
	assert.Empty(t, res.ToolCall)
	assert.Equal(t, []types.AgentEventType{
		types.EventTypeMessageStart,
		types.EventTypeMessageContent,
		types.EventTypeMessageContent,
		types.EventTypeMessageEnd,
	}, eventTypes(*events))
}

func TestProcessStream_UnterminatedToolCall(t *testing.T) {
	_, emit := collect()
	res := ProcessStream(feed(msg("<tool><tool_name>browser_go_back</tool_name></to")), emit, nil)

	assert.Equal(t, "<tool_name>browser_go_back</tool_name></to", res.ToolCall)
}

func TestProcessStream_Error(t *testing.T) {
	events, emit := collect()
	boom := errors.New("connection reset")

	res := ProcessStream(feed(msg("partial"), &llm.StreamChunk{Error: boom}, msg("ignored")), emit, nil)

	require.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "partial", res.Content)

	last := (*events)[len(*events)-1]
	assert.Equal(t, types.EventTypeError, last.Type)
	assert.ErrorIs(t, last.Error, boom)
}

func TestProcessStream_IgnoresThinkingAfterToolCall(t *testing.T) {
	_, emit := collect()
	res := ProcessStream(feed(
		msg("<tool><tool_name>x</tool_name></tool>"),
		think("late"),
	), emit, nil)

	assert.Empty(t, res.Thinking)
	assert.Equal(t, "<tool_name>x</tool_name>", res.ToolCall)
}
