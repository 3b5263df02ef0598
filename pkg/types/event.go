package types

// AgentEventType defines the type of event emitted by the agent.
type AgentEventType string

const (
	EventTypeThinkingStart   AgentEventType = "thinking_start"    // EventTypeThinkingStart indicates the agent is starting to think/reason.
	EventTypeThinkingContent AgentEventType = "thinking_content"  // EventTypeThinkingContent indicates content from the agent's thinking process.
	EventTypeThinkingEnd     AgentEventType = "thinking_end"      // EventTypeThinkingEnd indicates the agent has finished thinking.
	EventTypeToolCallStart   AgentEventType = "tool_call_start"   // EventTypeToolCallStart indicates the agent is starting to format a tool call.
	EventTypeToolCallContent AgentEventType = "tool_call_content" // EventTypeToolCallContent indicates content from the tool call XML.
	EventTypeToolCallEnd     AgentEventType = "tool_call_end"     // EventTypeToolCallEnd indicates the agent has finished the tool call XML.
	EventTypeMessageStart    AgentEventType = "message_start"     // EventTypeMessageStart indicates the agent is starting to compose a message.
	EventTypeMessageContent  AgentEventType = "message_content"   // EventTypeMessageContent indicates content from the agent's message.
	EventTypeMessageEnd      AgentEventType = "message_end"       // EventTypeMessageEnd indicates the agent has finished composing the message.
	EventTypeStepStart       AgentEventType = "step_start"        // EventTypeStepStart indicates a new iteration of the agent loop.
	EventTypeToolCall        AgentEventType = "tool_call"         // EventTypeToolCall indicates the agent is calling a tool.
	EventTypeToolResult      AgentEventType = "tool_result"       // EventTypeToolResult indicates a successful tool call result.
	EventTypeToolResultError AgentEventType = "tool_result_error" // EventTypeToolResultError indicates a tool call resulted in an error.
	EventTypeNoToolCall      AgentEventType = "no_tool_call"      // EventTypeNoToolCall indicates the agent answered without calling a tool.
	EventTypeAPICallStart    AgentEventType = "api_call_start"    // EventTypeAPICallStart indicates the agent is making an API call.
	EventTypeAPICallEnd      AgentEventType = "api_call_end"      // EventTypeAPICallEnd indicates an API call has completed.
	EventTypeUpdateBusy      AgentEventType = "update_busy"       // EventTypeUpdateBusy indicates a change in the agent's busy status.
	EventTypeTurnEnd         AgentEventType = "turn_end"          // EventTypeTurnEnd indicates the agent has finished processing the current turn.
	EventTypeError           AgentEventType = "error"             // EventTypeError indicates an error occurred during agent processing.
	EventTypeTokenUsage      AgentEventType = "token_usage"       // EventTypeTokenUsage indicates token usage information from an LLM completion.
)

// AgentEvent represents an event emitted by the agent during execution.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the input being sent to the tool (for tool call events).
	ToolInput map[string]interface{}

	// ToolOutput is the result from the tool (for tool result events).
	ToolOutput interface{}

	// Error contains error information for error events.
	Error error

	// Content holds text content for content-type events (thinking, message, etc.).
	Content string

	// ToolName is the name of the tool being called (for tool events).
	ToolName string

	// Type indicates the kind of event.
	Type AgentEventType

	// IsBusy indicates if the agent is busy (for busy status events).
	IsBusy bool

	// Step is the 1-based agent loop iteration (for step events).
	Step int

	// TokenUsage contains token usage information (for token usage events).
	TokenUsage *TokenUsage

	// APICallInfo contains API call information (for API call events).
	APICallInfo *APICallInfo
}

// TokenUsage contains token usage statistics from an LLM API call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// APICallInfo contains information about an API call.
type APICallInfo struct {
	// ContextTokens is the current conversation context size in tokens.
	ContextTokens int

	// MaxContextTokens is the configured maximum context limit in tokens, 0 if unbounded.
	MaxContextTokens int
}

func newEvent(t AgentEventType) *AgentEvent {
	return &AgentEvent{
		Type:     t,
		Metadata: make(map[string]interface{}),
	}
}

// NewThinkingStartEvent creates a thinking start event.
func NewThinkingStartEvent() *AgentEvent {
	return newEvent(EventTypeThinkingStart)
}

// NewThinkingContentEvent creates a thinking content event.
func NewThinkingContentEvent(content string) *AgentEvent {
	e := newEvent(EventTypeThinkingContent)
	e.Content = content
	return e
}

// NewThinkingEndEvent creates a thinking end event.
func NewThinkingEndEvent() *AgentEvent {
	return newEvent(EventTypeThinkingEnd)
}

// NewToolCallStartEvent creates a tool call start event.
func NewToolCallStartEvent() *AgentEvent {
	return newEvent(EventTypeToolCallStart)
}

// NewToolCallContentEvent creates a tool call content event.
func NewToolCallContentEvent(content string) *AgentEvent {
	e := newEvent(EventTypeToolCallContent)
	e.Content = content
	return e
}

// NewToolCallEndEvent creates a tool call end event.
func NewToolCallEndEvent() *AgentEvent {
	return newEvent(EventTypeToolCallEnd)
}

// NewMessageStartEvent creates a message start event.
func NewMessageStartEvent() *AgentEvent {
	return newEvent(EventTypeMessageStart)
}

// NewMessageContentEvent creates a message content event.
func NewMessageContentEvent(content string) *AgentEvent {
	e := newEvent(EventTypeMessageContent)
	e.Content = content
	return e
}

// NewMessageEndEvent creates a message end event.
func NewMessageEndEvent() *AgentEvent {
	return newEvent(EventTypeMessageEnd)
}

// NewStepStartEvent creates a step start event for the given loop iteration.
func NewStepStartEvent(step, maxSteps int) *AgentEvent {
	e := newEvent(EventTypeStepStart)
	e.Step = step
	e.Metadata["max_steps"] = maxSteps
	return e
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(toolName string, toolInput map[string]interface{}) *AgentEvent {
	e := newEvent(EventTypeToolCall)
	e.ToolName = toolName
	e.ToolInput = toolInput
	return e
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(toolName string, output interface{}) *AgentEvent {
	e := newEvent(EventTypeToolResult)
	e.ToolName = toolName
	e.ToolOutput = output
	return e
}

// NewToolResultErrorEvent creates a tool result error event.
func NewToolResultErrorEvent(toolName string, err error) *AgentEvent {
	e := newEvent(EventTypeToolResultError)
	e.ToolName = toolName
	e.Error = err
	return e
}

// NewNoToolCallEvent creates a no tool call event.
func NewNoToolCallEvent() *AgentEvent {
	return newEvent(EventTypeNoToolCall)
}

// NewAPICallStartEvent creates an API call start event with context token information.
func NewAPICallStartEvent(apiName string, contextTokens, maxContextTokens int) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeAPICallStart,
		Metadata: map[string]interface{}{"api_name": apiName},
		APICallInfo: &APICallInfo{
			ContextTokens:    contextTokens,
			MaxContextTokens: maxContextTokens,
		},
	}
}

// NewAPICallEndEvent creates an API call end event.
func NewAPICallEndEvent(apiName string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeAPICallEnd,
		Metadata: map[string]interface{}{"api_name": apiName},
	}
}

// NewUpdateBusyEvent creates a busy status update event.
func NewUpdateBusyEvent(isBusy bool) *AgentEvent {
	e := newEvent(EventTypeUpdateBusy)
	e.IsBusy = isBusy
	return e
}

// NewTurnEndEvent creates a turn end event.
func NewTurnEndEvent() *AgentEvent {
	return newEvent(EventTypeTurnEnd)
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	e := newEvent(EventTypeError)
	e.Error = err
	return e
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(promptTokens, completionTokens, totalTokens int) *AgentEvent {
	e := newEvent(EventTypeTokenUsage)
	e.TokenUsage = &TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
	}
	return e
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *AgentEvent) WithMetadata(key string, value interface{}) *AgentEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsThinkingEvent returns true if this is a thinking-related event.
func (e *AgentEvent) IsThinkingEvent() bool {
	return e.Type == EventTypeThinkingStart ||
		e.Type == EventTypeThinkingContent ||
		e.Type == EventTypeThinkingEnd
}

// IsMessageEvent returns true if this is a message-related event.
func (e *AgentEvent) IsMessageEvent() bool {
	return e.Type == EventTypeMessageStart ||
		e.Type == EventTypeMessageContent ||
		e.Type == EventTypeMessageEnd
}

// IsToolEvent returns true if this is a tool-related event.
func (e *AgentEvent) IsToolEvent() bool {
	switch e.Type {
	case EventTypeToolCall, EventTypeToolResult, EventTypeToolResultError,
		EventTypeToolCallStart, EventTypeToolCallContent, EventTypeToolCallEnd:
		return true
	}
	return false
}

// IsErrorEvent returns true if this is an error event.
func (e *AgentEvent) IsErrorEvent() bool {
	return e.Type == EventTypeError || e.Type == EventTypeToolResultError
}
