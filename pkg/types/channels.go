package types

import "sync"

// AgentChannels groups the channels an executor uses to talk to an agent.
type AgentChannels struct {
	// Input carries tasks and cancel requests to the agent.
	Input chan *Input

	// Event carries everything the agent emits.
	Event chan *AgentEvent

	// Shutdown is closed by the executor to stop the agent.
	Shutdown chan struct{}

	// Done is closed by the agent once its event loop has exited.
	Done chan struct{}

	closeOnce sync.Once
}

// NewAgentChannels creates channels with the given buffer size for Input and Event.
func NewAgentChannels(bufferSize int) *AgentChannels {
	return &AgentChannels{
		Input:    make(chan *Input, bufferSize),
		Event:    make(chan *AgentEvent, bufferSize),
		Shutdown: make(chan struct{}),
		Done:     make(chan struct{}),
	}
}

// Close closes the event and done channels. Safe to call more than once.
func (c *AgentChannels) Close() {
	c.closeOnce.Do(func() {
		close(c.Event)
		close(c.Done)
	})
}
