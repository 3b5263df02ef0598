package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/pilot/pkg/agent/memory"
	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/llm/tokenizer"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/tools/browser"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	// DefaultMaxSteps bounds one turn of the agent loop.
	DefaultMaxSteps = 100

	defaultBufferSize = 10
	circuitBreakerLen = 5
)

var (
	agentLog *logging.Logger

	newTokenizer = tokenizer.NewForModel
)

func init() {
	var err error
	agentLog, err = logging.NewLogger("agent")
	if err != nil {
		agentLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// DefaultAgent processes user input through an LLM provider using a
// tool-calling loop with thinking, memory and error recovery.
type DefaultAgent struct {
	provider           llm.Provider
	channels           *types.AgentChannels
	customInstructions string
	maxSteps           int
	bufferSize         int

	tools         map[string]tools.Tool
	toolsMu       sync.RWMutex
	disabledTools map[string]bool
	memory        memory.Memory
	tokenizer     *tokenizer.Tokenizer

	browserManager *browser.SessionManager

	cancelMu     sync.Mutex
	cancelStream context.CancelFunc

	// turnMu runs turns one at a time; they share memory, error tracking
	// and cancelStream.
	turnMu sync.Mutex

	running      bool
	runMu        sync.Mutex
	shutdownOnce sync.Once
	turns        sync.WaitGroup

	// Ring buffer of the last circuitBreakerLen error messages.
	lastErrors [circuitBreakerLen]string
	errorIndex int

	historyMu   sync.Mutex
	history     []StepRecord
	finalResult string
}

// AgentOption is a function that configures an agent
type AgentOption func(*DefaultAgent)

// WithCustomInstructions adds user instructions to the system prompt.
func WithCustomInstructions(instructions string) AgentOption {
	return func(a *DefaultAgent) {
		a.customInstructions = instructions
	}
}

// WithMaxSteps bounds the number of tool calls in one turn. Values below 1 are ignored.
func WithMaxSteps(n int) AgentOption {
	return func(a *DefaultAgent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) AgentOption {
	return func(a *DefaultAgent) {
		if size >= 0 {
			a.bufferSize = size
		}
	}
}

// WithTokenizer replaces the default cl100k tokenizer.
func WithTokenizer(tok *tokenizer.Tokenizer) AgentOption {
	return func(a *DefaultAgent) {
		a.tokenizer = tok
	}
}

// WithBrowserManager registers the browser tools backed by manager.
func WithBrowserManager(manager *browser.SessionManager) AgentOption {
	return func(a *DefaultAgent) {
		a.browserManager = manager
	}
}

// WithDisabledTools excludes tools by name from registration.
func WithDisabledTools(toolNames ...string) AgentOption {
	return func(a *DefaultAgent) {
		if a.disabledTools == nil {
			a.disabledTools = make(map[string]bool)
		}
		for _, name := range toolNames {
			a.disabledTools[name] = true
		}
	}
}

// NewDefaultAgent creates a new DefaultAgent with the given provider and options.
func NewDefaultAgent(provider llm.Provider, opts ...AgentOption) *DefaultAgent {
	a := &DefaultAgent{
		provider:   provider,
		maxSteps:   DefaultMaxSteps,
		bufferSize: defaultBufferSize,
		tools:      make(map[string]tools.Tool),
		memory:     memory.NewConversationMemory(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.tokenizer == nil {
		tok, err := newTokenizer(provider.GetModel())
		if err != nil {
			agentLog.Warnf("tokenizer unavailable, estimating tokens: %v", err)
		}
		a.tokenizer = tok
	}

	a.registerBuiltInTools()
	a.channels = types.NewAgentChannels(a.bufferSize)
	return a
}

func (a *DefaultAgent) registerBuiltInTools() {
	builtIns := []tools.Tool{tools.NewTaskCompletionTool()}
	if a.browserManager != nil {
		builtIns = append(builtIns, browser.NewToolRegistry(a.browserManager, a.provider).RegisterTools()...)
	}
	for _, t := range builtIns {
		if !a.disabledTools[t.Name()] {
			a.tools[t.Name()] = t
		}
	}
}

// RegisterTool adds a custom tool. task_completion cannot be overridden.
func (a *DefaultAgent) RegisterTool(tool tools.Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if name == tools.TaskCompletionToolName {
		return fmt.Errorf("cannot override built-in tool: %s", name)
	}

	a.toolsMu.Lock()
	defer a.toolsMu.Unlock()
	a.tools[name] = tool
	return nil
}

// Start begins the agent's event loop in a goroutine.
func (a *DefaultAgent) Start(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.running {
		return ErrAlreadyRunning
	}
	a.running = true

	go a.eventLoop(ctx)
	return nil
}

// Shutdown gracefully stops the agent.
func (a *DefaultAgent) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		close(a.channels.Shutdown)
	})

	select {
	case <-a.channels.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetChannels returns the communication channels for this agent.
func (a *DefaultAgent) GetChannels() *types.AgentChannels {
	return a.channels
}

func (a *DefaultAgent) eventLoop(ctx context.Context) {
	loopCtx, stop := context.WithCancel(ctx)
	defer func() {
		stop()
		a.turns.Wait()
		a.channels.Close()
		a.runMu.Lock()
		a.running = false
		a.runMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			select {
			case a.channels.Event <- types.NewErrorEvent(ctx.Err()):
			default:
			}
			// Unblock turns still emitting events.
			a.shutdownOnce.Do(func() {
				close(a.channels.Shutdown)
			})
			return

		case <-a.channels.Shutdown:
			return

		case input, ok := <-a.channels.Input:
			if !ok || input == nil {
				return
			}
			if input.IsCancel() {
				a.cancelTurn()
				continue
			}
			if input.IsUserInput() {
				a.turns.Add(1)
				go func() {
					defer a.turns.Done()
					a.processUserInput(loopCtx, input.Content)
				}()
			}
		}
	}
}

func (a *DefaultAgent) cancelTurn() {
	a.cancelMu.Lock()
	defer a.cancelMu.Unlock()
	if a.cancelStream != nil {
		a.cancelStream()
		a.cancelStream = nil
	}
}

// processUserInput runs one turn of the agent loop for content. Inputs that
// arrive during a turn wait for it to end.
func (a *DefaultAgent) processUserInput(ctx context.Context, content string) {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	a.memory.Add(types.NewUserMessage(content))

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.cancelMu.Lock()
	a.cancelStream = cancel
	a.cancelMu.Unlock()
	defer func() {
		a.cancelMu.Lock()
		a.cancelStream = nil
		a.cancelMu.Unlock()
	}()

	a.resetErrorTracking()
	a.emitEvent(types.NewUpdateBusyEvent(true))
	a.runAgentLoop(turnCtx)
	a.emitEvent(types.NewUpdateBusyEvent(false))
	a.emitEvent(types.NewTurnEndEvent())
}

// emitEvent delivers event unless the agent is shutting down.
func (a *DefaultAgent) emitEvent(event *types.AgentEvent) {
	select {
	case a.channels.Event <- event:
	case <-a.channels.Shutdown:
	}
}
