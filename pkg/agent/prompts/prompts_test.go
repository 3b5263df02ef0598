package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/types"
)

func TestFormatToolSchema(t *testing.T) {
	formatted := FormatToolSchema(tools.NewTaskCompletionTool())

	assert.Contains(t, formatted, "## task_completion")
	assert.Contains(t, formatted, "Signal that the task is finished")
	assert.Contains(t, formatted, "- result (string, required)")
	assert.Contains(t, formatted, "- success (boolean, optional)")
	assert.Contains(t, formatted, "loop-breaking")
	assert.Contains(t, formatted, "<result>...</result>")
	assert.NotContains(t, formatted, "<success>")
}

// toolsSection is the opener of the tool list; the tag name alone also
// appears in the tool-calling rules.
const toolsSection = "<available_tools>\n## "

func TestBuild(t *testing.T) {
	t.Run("sections in order", func(t *testing.T) {
		prompt := NewPromptBuilder().
			WithTools([]tools.Tool{tools.NewTaskCompletionTool()}).
			WithCustomInstructions("Write in Spanish.").
			Build()

		idx := func(s string) int { return strings.Index(prompt, s) }
		require.GreaterOrEqual(t, idx("<custom_instructions>"), 0)
		require.GreaterOrEqual(t, idx(toolsSection), 0)
		assert.Less(t, idx("<custom_instructions>"), idx("<identity>"))
		assert.Less(t, idx("<tool_calling>"), idx(toolsSection))
		assert.Less(t, idx(toolsSection), idx("<browser_guidance>"))
		assert.Contains(t, prompt, "Write in Spanish.")
		assert.NotContains(t, prompt, "<allowed_domains>")
	})

	t.Run("no tools", func(t *testing.T) {
		prompt := NewPromptBuilder().Build()
		assert.NotContains(t, prompt, toolsSection)
		assert.NotContains(t, prompt, "## task_completion")
		assert.NotContains(t, prompt, "<custom_instructions>")
	})

	t.Run("allowed domains", func(t *testing.T) {
		prompt := NewPromptBuilder().WithAllowedDomains([]string{"*.linkedin.com", "linkedin.com"}).Build()
		assert.Contains(t, prompt, "Navigation is restricted to: *.linkedin.com, linkedin.com")
	})
}

func TestBuildMessages(t *testing.T) {
	history := []*types.Message{
		types.NewSystemMessage("old system"),
		types.NewUserMessage("task"),
		types.NewAssistantMessage("<tool>...</tool>"),
	}

	msgs := BuildMessages("sys", history, "", "<error_recovery>x</error_recovery>")
	require.Len(t, msgs, 4)
	assert.Equal(t, types.RoleSystem, msgs[0].Role)
	assert.Equal(t, "sys", msgs[0].Content)
	assert.Equal(t, "task", msgs[1].Content)
	assert.Equal(t, "<error_recovery>x</error_recovery>", msgs[3].Content)

	msgs = BuildMessages("sys", nil, "hello", "")
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Content)
}

func TestBuildErrorRecoveryMessage(t *testing.T) {
	tests := []struct {
		name string
		ctx  ErrorRecoveryContext
		want []string
	}{
		{
			name: "no tool call",
			ctx:  ErrorRecoveryContext{Type: ErrorTypeNoToolCall, Content: "I think I'm done"},
			want: []string{"did not contain a tool call", "I think I'm done"},
		},
		{
			name: "unknown tool",
			ctx:  ErrorRecoveryContext{Type: ErrorTypeUnknownTool, ToolName: "post_linkedin", AvailableTools: []string{"browser_click", "task_completion"}},
			want: []string{`"post_linkedin"`, "browser_click, task_completion"},
		},
		{
			name: "tool execution",
			ctx:  ErrorRecoveryContext{Type: ErrorTypeToolExecution, ToolName: "browser_click", Err: errors.New("timeout 30000ms exceeded")},
			want: []string{"Tool browser_click failed: timeout 30000ms exceeded"},
		},
		{
			name: "invalid xml",
			ctx:  ErrorRecoveryContext{Type: ErrorTypeInvalidXML, Err: errors.New("unexpected EOF")},
			want: []string{"Parser error: unexpected EOF", "CDATA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := BuildErrorRecoveryMessage(tt.ctx)
			assert.True(t, strings.HasPrefix(msg, "<error_recovery>"))
			assert.True(t, strings.HasSuffix(msg, "</error_recovery>"))
			for _, w := range tt.want {
				assert.Contains(t, msg, w)
			}
		})
	}
}
