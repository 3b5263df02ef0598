package agent

import (
	"context"
	"fmt"

	"github.com/entrhq/pilot/pkg/types"
)

// runAgentLoop iterates until a loop-breaking tool succeeds, the step budget
// runs out, the circuit breaker trips, the LLM fails or ctx is canceled.
func (a *DefaultAgent) runAgentLoop(ctx context.Context) {
	var errorContext string

	for step := 1; ; step++ {
		if ctx.Err() != nil {
			a.recordStopped()
			return
		}

		if step > a.maxSteps {
			agentLog.Warnf("step budget of %d exhausted", a.maxSteps)
			a.emitEvent(types.NewErrorEvent(fmt.Errorf("%w (%d)", ErrMaxStepsReached, a.maxSteps)))
			return
		}

		a.emitEvent(types.NewStepStartEvent(step, a.maxSteps))

		shouldContinue, nextErrorContext := a.executeIteration(ctx, step, errorContext)
		if !shouldContinue {
			if ctx.Err() != nil {
				a.recordStopped()
			}
			return
		}
		errorContext = nextErrorContext
	}
}

// executeIteration performs a single iteration of the agent loop.
// It returns whether to continue and the ephemeral error context for the next
// iteration, empty when the iteration succeeded.
func (a *DefaultAgent) executeIteration(ctx context.Context, step int, errorContext string) (bool, string) {
	pctx := a.preparePrompt(errorContext)

	resp, err := a.callLLM(ctx, pctx)
	if err != nil {
		if ctx.Err() == nil {
			agentLog.Errorf("llm call failed: %v", err)
		}
		return false, ""
	}

	a.recordResponse(pctx, resp)
	return a.processToolCall(ctx, step, resp)
}

// recordStopped tells the model on its next turn that the previous one was interrupted.
func (a *DefaultAgent) recordStopped() {
	a.memory.Add(types.NewUserMessage("Operation stopped by user."))
}
