package browser

import (
	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/llm"
)

// ToolRegistry builds the browser tool set for an agent.
type ToolRegistry struct {
	manager  *SessionManager
	provider llm.Provider
	tools    []tools.Tool
}

// NewToolRegistry creates a registry. provider may be nil, which leaves
// analyze_page hidden.
func NewToolRegistry(manager *SessionManager, provider llm.Provider) *ToolRegistry {
	return &ToolRegistry{manager: manager, provider: provider}
}

// RegisterTools returns the browser tools, building them on first use.
// Session lifecycle stays with the caller: there is no tool to open or close
// a browser.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}
	r.tools = []tools.Tool{
		NewNavigateTool(r.manager),
		NewGoBackTool(r.manager),
		NewClickTool(r.manager),
		NewFillTool(r.manager),
		NewTypeTool(r.manager),
		NewPressKeyTool(r.manager),
		NewScrollTool(r.manager),
		NewWaitTool(r.manager),
		NewExtractContentTool(r.manager),
		NewSearchTool(r.manager),
		NewEvaluateTool(r.manager),
		NewAnalyzePageTool(r.manager, r.provider),
		NewSavePDFTool(r.manager),
		NewListSessionsTool(r.manager),
	}
	return r.tools
}

// SessionManager returns the manager the tools act on.
func (r *ToolRegistry) SessionManager() *SessionManager {
	return r.manager
}
