// Package prompts assembles the system prompt and per-iteration message lists.
package prompts

import (
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/types"
)

// PromptBuilder constructs the system prompt for the agent loop.
type PromptBuilder struct {
	tools              []tools.Tool
	customInstructions string
	allowedDomains     []string
}

// NewPromptBuilder creates a new prompt builder with default settings
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// WithTools sets the tools listed in <available_tools>.
func (pb *PromptBuilder) WithTools(list []tools.Tool) *PromptBuilder {
	pb.tools = list
	return pb
}

// WithCustomInstructions adds user-provided instructions ahead of the base prompt.
func (pb *PromptBuilder) WithCustomInstructions(instructions string) *PromptBuilder {
	pb.customInstructions = instructions
	return pb
}

// WithAllowedDomains tells the model which sites it may visit.
func (pb *PromptBuilder) WithAllowedDomains(domains []string) *PromptBuilder {
	pb.allowedDomains = domains
	return pb
}

// Build assembles the prompt sections.
func (pb *PromptBuilder) Build() string {
	var b strings.Builder

	section := func(s string) {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	if pb.customInstructions != "" {
		section("<custom_instructions>\n" + pb.customInstructions + "\n</custom_instructions>")
	}

	section(IdentityPrompt)
	section(AgentLoopPrompt)
	section(ChainOfThoughtPrompt)
	section(ToolCallingPrompt)

	if len(pb.tools) > 0 {
		section("<available_tools>\n" + FormatToolSchemas(pb.tools) + "</available_tools>")
	}

	section(BrowserGuidancePrompt)

	if len(pb.allowedDomains) > 0 {
		section("<allowed_domains>\nNavigation is restricted to: " +
			strings.Join(pb.allowedDomains, ", ") + "\n</allowed_domains>")
	}

	b.WriteString(ToolUseRulesPrompt)
	return b.String()
}

// BuildMessages creates the message list for one LLM call. errorContext is
// appended as a trailing user message but is never stored in memory.
func BuildMessages(systemPrompt string, history []*types.Message, userMessage, errorContext string) []*types.Message {
	messages := make([]*types.Message, 0, len(history)+3)
	messages = append(messages, types.NewSystemMessage(systemPrompt))

	for _, msg := range history {
		if msg.Role != types.RoleSystem {
			messages = append(messages, msg)
		}
	}

	if errorContext != "" {
		messages = append(messages, types.NewUserMessage(errorContext))
	}
	if userMessage != "" {
		messages = append(messages, types.NewUserMessage(userMessage))
	}
	return messages
}
