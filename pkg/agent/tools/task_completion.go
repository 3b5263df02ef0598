package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// TaskCompletionToolName is the name of the loop-breaking completion tool.
const TaskCompletionToolName = "task_completion"

// TaskCompletionTool ends the agent turn and reports the final result.
type TaskCompletionTool struct{}

// NewTaskCompletionTool creates a new task completion tool
func NewTaskCompletionTool() *TaskCompletionTool {
	return &TaskCompletionTool{}
}

func (t *TaskCompletionTool) Name() string {
	return TaskCompletionToolName
}

func (t *TaskCompletionTool) Description() string {
	return "Signal that the task is finished and report what was done. " +
		"Call this once the browser work is complete, or when the task cannot be completed, explaining why."
}

func (t *TaskCompletionTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"result":  Prop("string", "Summary of the outcome. Do not end with questions or offers of further help."),
			"success": Prop("boolean", "false when the task could not be completed. Defaults to true."),
		},
		[]string{"result"},
	)
}

func (t *TaskCompletionTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var args struct {
		XMLName xml.Name `xml:"arguments"`
		Result  string   `xml:"result"`
		Success string   `xml:"success"`
	}
	if err := UnmarshalXMLWithFallback(argsXML, &args); err != nil {
		return "", nil, fmt.Errorf("invalid arguments for %s: %w", TaskCompletionToolName, err)
	}

	result := strings.TrimSpace(args.Result)
	if result == "" {
		return "", nil, fmt.Errorf("result cannot be empty")
	}

	success := !strings.EqualFold(strings.TrimSpace(args.Success), "false")
	return result, map[string]interface{}{"success": success}, nil
}

func (t *TaskCompletionTool) IsLoopBreaking() bool {
	return true
}
