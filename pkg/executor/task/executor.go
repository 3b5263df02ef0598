// Package task runs a single instruction against an agent and renders its
// progress to a terminal.
//
//	exec := task.NewExecutor(ag, task.WithTimeout(10*time.Minute))
//	result, err := exec.Run(ctx, "Publica un post en LinkedIn ...")
//	if err != nil {
//	    return err
//	}
//	task.WaitForEnter(os.Stdin, os.Stdout, "Press Enter to close the browser...")
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pilot/pkg/agent"
	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/types"
)

var taskLog *logging.Logger

func init() {
	var err error
	taskLog, err = logging.NewLogger("task")
	if err != nil {
		taskLog.Warnf("Failed to initialize task logger, using stderr fallback: %v", err)
	}
}

const (
	shutdownTimeout = 5 * time.Second
	cancelGrace     = 10 * time.Second
)

// Status is the outcome of a task run.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusIncomplete Status = "incomplete"
	StatusTimeout    Status = "timeout"
)

// ToolCall records one tool invocation seen during the run.
type ToolCall struct {
	Name  string
	Error string
}

// Result summarises a task run.
type Result struct {
	Task        string
	FinalResult string
	ToolCalls   []ToolCall
	Errors      []string
	Duration    time.Duration
	Status      Status
	TotalTokens int
}

// Executor runs one task to completion against an agent.
type Executor struct {
	agent        agent.Agent
	writer       io.Writer
	showThinking bool
	timeout      time.Duration
	cancelGrace  time.Duration
	styles       styles
}

// Option configures an Executor.
type Option func(*Executor)

// WithWriter sets the output writer (default os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithShowThinking toggles rendering of the model's <thinking> blocks.
func WithShowThinking(show bool) Option {
	return func(e *Executor) {
		e.showThinking = show
	}
}

// WithTimeout bounds the run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// NewExecutor creates an executor for ag.
func NewExecutor(ag agent.Agent, opts ...Option) *Executor {
	e := &Executor{
		agent:       ag,
		writer:      os.Stdout,
		cancelGrace: cancelGrace,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.styles = newStyles(lipgloss.NewRenderer(e.writer))
	return e
}

// Run starts the agent, sends task and blocks until the turn ends, then
// shuts the agent down. The returned error covers failures to run at all;
// how the task went is in Result.Status.
func (e *Executor) Run(ctx context.Context, task string) (*Result, error) {
	start := time.Now()
	res := &Result{Task: task, Status: StatusIncomplete}

	if err := e.agent.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start agent: %w", err)
	}
	defer e.shutdown()

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	ch := e.agent.GetChannels()
	fmt.Fprintln(e.writer, e.styles.header.Render("Task: ")+task)
	taskLog.Infof("running task (%d chars)", len(task))

	select {
	case ch.Input <- types.NewUserInput(task):
	case <-runCtx.Done():
		res.Status = StatusTimeout
		res.Duration = time.Since(start)
		return res, nil
	}

	r := &renderer{e: e, res: res}
	e.consume(runCtx, ch, r)

	res.Duration = time.Since(start)
	if res.Status == StatusIncomplete && len(res.Errors) > 0 {
		res.Status = StatusFailed
	}
	r.summary()
	taskLog.Infof("task finished: status=%s steps=%d duration=%s", res.Status, len(res.ToolCalls), res.Duration)
	return res, nil
}

// consume renders events until the turn ends. On timeout it cancels the turn
// and waits briefly for the agent to wind down.
func (e *Executor) consume(ctx context.Context, ch *types.AgentChannels, r *renderer) {
	done := ctx.Done()
	var grace <-chan time.Time

	for {
		select {
		case event, ok := <-ch.Event:
			if !ok {
				return
			}
			if event.Type == types.EventTypeTurnEnd {
				return
			}
			r.render(event)

		case <-done:
			done = nil
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				r.res.Status = StatusTimeout
			}
			r.res.Errors = append(r.res.Errors, ctx.Err().Error())
			fmt.Fprintln(e.writer, e.styles.err.Render(fmt.Sprintf("Stopping: %v", ctx.Err())))
			select {
			case ch.Input <- types.NewCancelInput():
			default:
			}
			grace = time.After(e.cancelGrace)

		case <-grace:
			taskLog.Warnf("agent did not end the turn within %s of cancellation", e.cancelGrace)
			return
		}
	}
}

func (e *Executor) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.agent.Shutdown(ctx); err != nil {
		taskLog.Warnf("agent shutdown: %v", err)
	}
}

// renderer turns agent events into terminal output and fills in the Result.
type renderer struct {
	e          *Executor
	res        *Result
	inMessage  bool
	inThinking bool
}

func (r *renderer) out() io.Writer { return r.e.writer }

func (r *renderer) render(event *types.AgentEvent) {
	st := r.e.styles
	switch event.Type {
	case types.EventTypeStepStart:
		limit, _ := event.Metadata["max_steps"].(int)
		fmt.Fprintln(r.out(), st.step.Render(fmt.Sprintf("── step %d/%d", event.Step, limit)))

	case types.EventTypeThinkingStart:
		r.inThinking = true
		if r.e.showThinking {
			fmt.Fprint(r.out(), st.thinking.Render("thinking: "))
		}
	case types.EventTypeThinkingContent:
		// Streamed chunks are written raw; styling would pad multi-line chunks.
		if r.e.showThinking {
			fmt.Fprint(r.out(), event.Content)
		}
	case types.EventTypeThinkingEnd:
		if r.e.showThinking && r.inThinking {
			fmt.Fprintln(r.out())
		}
		r.inThinking = false

	case types.EventTypeMessageStart:
		r.inMessage = false
	case types.EventTypeMessageContent:
		if event.Content == "" {
			return
		}
		r.inMessage = true
		fmt.Fprint(r.out(), event.Content)
	case types.EventTypeMessageEnd:
		if r.inMessage {
			fmt.Fprintln(r.out())
		}

	case types.EventTypeToolCall:
		r.res.ToolCalls = append(r.res.ToolCalls, ToolCall{Name: event.ToolName})
		line := "→ " + event.ToolName
		if arg := describeInput(event.ToolInput); arg != "" {
			line += " " + st.muted.Render(arg)
		}
		fmt.Fprintln(r.out(), st.tool.Render(line))

	case types.EventTypeToolResult:
		output := fmt.Sprint(event.ToolOutput)
		if event.ToolName == tools.TaskCompletionToolName {
			r.res.FinalResult = output
			r.res.Status = StatusCompleted
			if ok, isBool := event.Metadata["success"].(bool); isBool && !ok {
				r.res.Status = StatusFailed
			}
			return
		}
		fmt.Fprintln(r.out(), st.result.Render("  "+firstLine(output, 160)))

	case types.EventTypeToolResultError:
		if n := len(r.res.ToolCalls); n > 0 && r.res.ToolCalls[n-1].Name == event.ToolName {
			r.res.ToolCalls[n-1].Error = errString(event.Error)
		}
		fmt.Fprintln(r.out(), st.err.Render(fmt.Sprintf("  ✗ %s: %s", event.ToolName, errString(event.Error))))

	case types.EventTypeNoToolCall:
		fmt.Fprintln(r.out(), st.muted.Render("  (no tool call, asking the model to continue)"))

	case types.EventTypeTokenUsage:
		if event.TokenUsage != nil {
			r.res.TotalTokens += event.TokenUsage.TotalTokens
		}

	case types.EventTypeError:
		msg := errString(event.Error)
		r.res.Errors = append(r.res.Errors, msg)
		fmt.Fprintln(r.out(), st.err.Render("Error: "+msg))
	}
}

func (r *renderer) summary() {
	st := r.e.styles
	res := r.res
	if res.FinalResult != "" {
		fmt.Fprintln(r.out())
		fmt.Fprintln(r.out(), st.final.Render(res.FinalResult))
	}
	fmt.Fprintln(r.out(), st.muted.Render(fmt.Sprintf("%s · %d tool calls · %s",
		res.Status, len(res.ToolCalls), res.Duration.Round(time.Millisecond))))
}
