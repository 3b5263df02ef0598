package prompts

import (
	"fmt"
	"strings"
)

// ErrorRecoveryType classifies a failed iteration.
type ErrorRecoveryType string

const (
	ErrorTypeNoToolCall    ErrorRecoveryType = "no_tool_call"
	ErrorTypeInvalidXML    ErrorRecoveryType = "invalid_xml"
	ErrorTypeUnknownTool   ErrorRecoveryType = "unknown_tool"
	ErrorTypeToolExecution ErrorRecoveryType = "tool_execution"
)

// ErrorRecoveryContext carries the details the recovery message needs.
type ErrorRecoveryContext struct {
	Type           ErrorRecoveryType
	ToolName       string
	Err            error
	AvailableTools []string
	Content        string
}

// BuildErrorRecoveryMessage writes the ephemeral message shown to the model
// after a failed iteration.
func BuildErrorRecoveryMessage(c ErrorRecoveryContext) string {
	var b strings.Builder
	b.WriteString("<error_recovery>\n")

	switch c.Type {
	case ErrorTypeNoToolCall:
		b.WriteString("Your last response did not contain a tool call. Every response must contain exactly one <tool> block.\n")
		b.WriteString("If the task is finished, call task_completion with the result.\n")

	case ErrorTypeInvalidXML:
		b.WriteString("Your tool call could not be parsed as XML.\n")
		if c.Err != nil {
			fmt.Fprintf(&b, "Parser error: %v\n", c.Err)
		}
		b.WriteString("Escape &, < and > inside argument text, or wrap the text in CDATA.\n")

	case ErrorTypeUnknownTool:
		fmt.Fprintf(&b, "There is no tool named %q.\n", c.ToolName)
		if len(c.AvailableTools) > 0 {
			fmt.Fprintf(&b, "Available tools: %s\n", strings.Join(c.AvailableTools, ", "))
		}

	case ErrorTypeToolExecution:
		fmt.Fprintf(&b, "Tool %s failed", c.ToolName)
		if c.Err != nil {
			fmt.Fprintf(&b, ": %v", c.Err)
		}
		b.WriteString("\nRead the page again before retrying, or try a different approach.\n")

	default:
		if c.Err != nil {
			fmt.Fprintf(&b, "Error: %v\n", c.Err)
		}
	}

	if c.Content != "" {
		fmt.Fprintf(&b, "Your previous response was:\n%s\n", truncate(c.Content, 500))
	}

	b.WriteString("</error_recovery>")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
