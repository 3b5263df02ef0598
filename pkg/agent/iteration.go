package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/pilot/pkg/agent/core"
	"github.com/entrhq/pilot/pkg/agent/memory"
	"github.com/entrhq/pilot/pkg/agent/prompts"
	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/types"
)

const (
	// Share of the context window the prompt may use before old steps are dropped.
	contextBudgetRatio = 0.8
	keepRecentMessages = 6
)

type promptContext struct {
	messages     []*types.Message
	promptTokens int
	maxTokens    int
}

type llmResponse struct {
	content          string
	toolCall         string
	completionTokens int
}

func (a *DefaultAgent) contextBudget() int {
	info := a.provider.GetModelInfo()
	if info == nil || info.MaxTokens <= 0 {
		return 0
	}
	return int(float64(info.MaxTokens) * contextBudgetRatio)
}

// preparePrompt builds the message list and trims old steps from memory when
// the prompt would exceed the context budget.
func (a *DefaultAgent) preparePrompt(errorContext string) *promptContext {
	systemPrompt := a.buildSystemPrompt()
	messages := prompts.BuildMessages(systemPrompt, a.memory.GetAll(), "", errorContext)
	tokens := a.tokenizer.CountMessagesTokens(messages)

	budget := a.contextBudget()
	if budget > 0 && tokens > budget {
		if conv, ok := a.memory.(*memory.ConversationMemory); ok {
			overhead := tokens - a.tokenizer.CountMessagesTokens(conv.GetAll())
			dropped := conv.Trim(budget-overhead, keepRecentMessages, a.tokenizer.CountMessagesTokens)
			if dropped > 0 {
				agentLog.Infof("dropped %d old messages to fit context budget %d", dropped, budget)
				messages = prompts.BuildMessages(systemPrompt, conv.GetAll(), "", errorContext)
				tokens = a.tokenizer.CountMessagesTokens(messages)
			}
		}
	}

	return &promptContext{
		messages:     messages,
		promptTokens: tokens,
		maxTokens:    budget,
	}
}

// callLLM streams a completion and turns it into events.
func (a *DefaultAgent) callLLM(ctx context.Context, pctx *promptContext) (*llmResponse, error) {
	a.emitEvent(types.NewAPICallStartEvent("llm", pctx.promptTokens, pctx.maxTokens))
	defer a.emitEvent(types.NewAPICallEndEvent("llm"))

	stream, err := a.provider.StreamCompletion(ctx, pctx.messages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		err = fmt.Errorf("failed to start completion: %w", err)
		a.emitEvent(types.NewErrorEvent(err))
		return nil, err
	}

	res := core.ProcessStream(stream, a.emitEvent, nil)
	if res.Err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, res.Err
	}

	return &llmResponse{
		content:          res.Content,
		toolCall:         res.ToolCall,
		completionTokens: a.tokenizer.CountTokens(res.Content + res.ToolCall),
	}, nil
}

// recordResponse emits token usage and stores the assistant turn in memory.
func (a *DefaultAgent) recordResponse(pctx *promptContext, resp *llmResponse) {
	if pctx.promptTokens > 0 || resp.completionTokens > 0 {
		a.emitEvent(types.NewTokenUsageEvent(pctx.promptTokens, resp.completionTokens, pctx.promptTokens+resp.completionTokens))
	}

	full := resp.content
	if resp.toolCall != "" {
		full += "<tool>" + resp.toolCall + "</tool>"
	}
	a.memory.Add(types.NewAssistantMessage(full))
}

// processToolCall parses and runs the tool call from resp.
func (a *DefaultAgent) processToolCall(ctx context.Context, step int, resp *llmResponse) (bool, string) {
	if resp.toolCall == "" {
		a.emitEvent(types.NewNoToolCallEvent())
		errMsg := prompts.BuildErrorRecoveryMessage(prompts.ErrorRecoveryContext{
			Type:    prompts.ErrorTypeNoToolCall,
			Content: resp.content,
		})
		a.recordStep(StepRecord{Number: step, Error: tools.ErrNoToolCall.Error()})
		return a.failIteration(errMsg, tools.ErrNoToolCall)
	}

	call, err := tools.ParseToolCall("<tool>" + resp.toolCall + "</tool>")
	if err != nil {
		errMsg := prompts.BuildErrorRecoveryMessage(prompts.ErrorRecoveryContext{
			Type: prompts.ErrorTypeInvalidXML,
			Err:  err,
		})
		a.recordStep(StepRecord{Number: step, Error: err.Error()})
		return a.failIteration(errMsg, fmt.Errorf("invalid tool call: %w", err))
	}

	return a.executeTool(ctx, step, call)
}

// failIteration tracks errMsg for the circuit breaker and reports err.
func (a *DefaultAgent) failIteration(errMsg string, err error) (bool, string) {
	if a.trackError(errMsg) {
		a.emitEvent(types.NewErrorEvent(fmt.Errorf("%w: %v", ErrCircuitBreaker, err)))
		return false, ""
	}
	if !errors.Is(err, tools.ErrNoToolCall) {
		a.emitEvent(types.NewErrorEvent(err))
	}
	return true, errMsg
}

// trackError records errMsg and reports whether the last circuitBreakerLen
// errors were identical.
func (a *DefaultAgent) trackError(errMsg string) bool {
	a.lastErrors[a.errorIndex] = errMsg
	a.errorIndex = (a.errorIndex + 1) % circuitBreakerLen

	for _, e := range a.lastErrors {
		if e == "" || e != errMsg {
			return false
		}
	}
	return true
}

func (a *DefaultAgent) resetErrorTracking() {
	a.lastErrors = [circuitBreakerLen]string{}
	a.errorIndex = 0
}
