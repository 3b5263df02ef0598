package agent

import (
	"github.com/entrhq/pilot/pkg/agent/prompts"
)

// buildSystemPrompt constructs the system prompt with tool schemas and custom instructions
func (a *DefaultAgent) buildSystemPrompt() string {
	builder := prompts.NewPromptBuilder().
		WithTools(a.getToolsList()).
		WithCustomInstructions(a.customInstructions)

	if a.browserManager != nil {
		builder.WithAllowedDomains(a.browserManager.AllowedDomains())
	}

	return builder.Build()
}
