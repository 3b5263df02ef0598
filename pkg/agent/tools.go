package agent

import (
	"sort"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

// getToolsList returns the tools to advertise, sorted by name. Tools that
// implement ConditionallyVisible and are currently hidden are left out.
func (a *DefaultAgent) getToolsList() []tools.Tool {
	a.toolsMu.RLock()
	defer a.toolsMu.RUnlock()

	list := make([]tools.Tool, 0, len(a.tools))
	for _, t := range a.tools {
		if tools.IsVisible(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

func (a *DefaultAgent) toolNames() []string {
	list := a.getToolsList()
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name()
	}
	return names
}

func (a *DefaultAgent) getTool(name string) (tools.Tool, bool) {
	a.toolsMu.RLock()
	defer a.toolsMu.RUnlock()

	t, ok := a.tools[name]
	return t, ok
}

// GetTool returns a registered tool by name, or nil.
func (a *DefaultAgent) GetTool(name string) tools.Tool {
	t, _ := a.getTool(name)
	return t
}
