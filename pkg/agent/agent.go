// Package agent runs the LLM tool loop that drives the browser.
//
//	ag := agent.NewDefaultAgent(provider,
//	    agent.WithBrowserManager(manager),
//	    agent.WithMaxSteps(50),
//	)
//	if err := ag.Start(ctx); err != nil {
//	    return err
//	}
//	ag.GetChannels().Input <- types.NewUserInput(task)
//
// Subpackages:
//   - core: stream processing into agent events
//   - memory: conversation history
//   - prompts: system prompt and error-recovery messages
//   - tools: tool contract, XML tool-call parsing, task_completion
package agent

import (
	"context"
	"errors"

	"github.com/entrhq/pilot/pkg/types"
)

// Agent is an async, channel-driven agent.
type Agent interface {
	// Start launches the event loop. It returns an error if the agent is
	// already running; otherwise the loop runs until ctx is canceled or
	// Shutdown is called.
	Start(ctx context.Context) error

	// Shutdown stops the event loop, canceling any running turn, and
	// waits until it has exited or ctx is done.
	Shutdown(ctx context.Context) error

	// GetChannels returns the channels used to send input and receive events.
	GetChannels() *types.AgentChannels
}

var (
	// ErrMaxStepsReached is emitted when a turn uses its whole step budget
	// without calling a loop-breaking tool.
	ErrMaxStepsReached = errors.New("maximum number of steps reached")

	// ErrCircuitBreaker is emitted after repeated identical failures.
	ErrCircuitBreaker = errors.New("circuit breaker triggered: too many consecutive errors")

	// ErrAlreadyRunning is returned by Start on a running agent.
	ErrAlreadyRunning = errors.New("agent is already running")
)
