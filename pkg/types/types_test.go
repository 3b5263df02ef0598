package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventClassification(t *testing.T) {
	tests := []struct {
		event    *AgentEvent
		thinking bool
		message  bool
		tool     bool
		isErr    bool
	}{
		{event: NewThinkingContentEvent("plan"), thinking: true},
		{event: NewMessageStartEvent(), message: true},
		{event: NewToolCallEvent("browser_click", map[string]interface{}{"selector": "#go"}), tool: true},
		{event: NewToolResultErrorEvent("browser_click", errors.New("timeout")), tool: true, isErr: true},
		{event: NewErrorEvent(errors.New("boom")), isErr: true},
		{event: NewTurnEndEvent()},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type), func(t *testing.T) {
			assert.Equal(t, tt.thinking, tt.event.IsThinkingEvent())
			assert.Equal(t, tt.message, tt.event.IsMessageEvent())
			assert.Equal(t, tt.tool, tt.event.IsToolEvent())
			assert.Equal(t, tt.isErr, tt.event.IsErrorEvent())
		})
	}
}

func TestEventPayloads(t *testing.T) {
	step := NewStepStartEvent(3, 100)
	assert.Equal(t, 3, step.Step)
	assert.Equal(t, 100, step.Metadata["max_steps"])

	usage := NewTokenUsageEvent(10, 5, 15)
	require.NotNil(t, usage.TokenUsage)
	assert.Equal(t, 15, usage.TokenUsage.TotalTokens)

	api := NewAPICallStartEvent("llm", 1200, 128000)
	require.NotNil(t, api.APICallInfo)
	assert.Equal(t, 128000, api.APICallInfo.MaxContextTokens)
	assert.Equal(t, "llm", api.Metadata["api_name"])

	busy := NewUpdateBusyEvent(true).WithMetadata("source", "test")
	assert.True(t, busy.IsBusy)
	assert.Equal(t, "test", busy.Metadata["source"])

	var bare AgentEvent
	bare.WithMetadata("k", 1)
	assert.Equal(t, 1, bare.Metadata["k"])
}

func TestInputs(t *testing.T) {
	in := NewUserInput("post something")
	assert.True(t, in.IsUserInput())
	assert.False(t, in.IsCancel())
	assert.Equal(t, "post something", in.Content)

	assert.True(t, NewCancelInput().IsCancel())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, RoleSystem, NewSystemMessage("s").Role)
	assert.Equal(t, RoleUser, NewUserMessage("u").Role)
	m := NewAssistantMessage("a")
	assert.Equal(t, RoleAssistant, m.Role)
	assert.NotNil(t, m.Metadata)
}

func TestAgentChannelsCloseIdempotent(t *testing.T) {
	ch := NewAgentChannels(4)
	assert.Equal(t, 4, cap(ch.Input))
	assert.Equal(t, 4, cap(ch.Event))

	ch.Close()
	ch.Close()

	_, ok := <-ch.Event
	assert.False(t, ok)
	_, ok = <-ch.Done
	assert.False(t, ok)
}
