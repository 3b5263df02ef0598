package agent

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/entrhq/pilot/pkg/agent/prompts"
	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/types"
)

// executeTool looks up, runs and records one tool call.
func (a *DefaultAgent) executeTool(ctx context.Context, step int, call *tools.ToolCall) (bool, string) {
	tool, ok := a.getTool(call.ToolName)
	if !ok {
		errMsg := prompts.BuildErrorRecoveryMessage(prompts.ErrorRecoveryContext{
			Type:           prompts.ErrorTypeUnknownTool,
			ToolName:       call.ToolName,
			AvailableTools: a.toolNames(),
		})
		a.recordStep(StepRecord{Number: step, ToolName: call.ToolName, Error: "unknown tool"})
		return a.failIteration(errMsg, fmt.Errorf("unknown tool: %s", call.ToolName))
	}

	argsXML := call.ArgumentsXML()
	args, err := tools.XMLToMap(argsXML)
	if err != nil {
		args = map[string]interface{}{}
	}
	a.emitEvent(types.NewToolCallEvent(call.ToolName, args))

	started := time.Now()
	result, metadata, toolErr := tool.Execute(ctx, argsXML)
	record := StepRecord{
		Number:    step,
		ToolName:  call.ToolName,
		Arguments: args,
		Result:    result,
		Duration:  time.Since(started),
	}

	if toolErr != nil {
		record.Error = toolErr.Error()
		a.recordStep(record)
		agentLog.Warnf("tool %s failed: %v", call.ToolName, toolErr)

		a.emitEvent(types.NewToolResultErrorEvent(call.ToolName, toolErr))
		if ctx.Err() != nil {
			return false, ""
		}
		errMsg := prompts.BuildErrorRecoveryMessage(prompts.ErrorRecoveryContext{
			Type:     prompts.ErrorTypeToolExecution,
			ToolName: call.ToolName,
			Err:      toolErr,
		})
		return a.failIteration(errMsg, fmt.Errorf("tool execution failed: %w", toolErr))
	}

	a.recordStep(record)
	agentLog.Debugf("tool %s succeeded in %s", call.ToolName, record.Duration)

	event := types.NewToolResultEvent(call.ToolName, result)
	maps.Copy(event.Metadata, metadata)
	a.emitEvent(event)
	a.resetErrorTracking()

	if tool.IsLoopBreaking() {
		a.setFinalResult(result)
		return false, ""
	}

	a.memory.Add(types.NewUserMessage(fmt.Sprintf("Tool '%s' result:\n%s", call.ToolName, result)))
	return true, ""
}
