package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ListSessionsTool reports the open browser sessions.
type ListSessionsTool struct{ sessionTool }

func NewListSessionsTool(manager *SessionManager) *ListSessionsTool {
	return &ListSessionsTool{sessionTool{manager}}
}

func (t *ListSessionsTool) Name() string { return "list_browser_sessions" }

func (t *ListSessionsTool) Description() string {
	return "List the open browser sessions with their current URL and title."
}

func (t *ListSessionsTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{})
}

func (t *ListSessionsTool) Execute(_ context.Context, _ []byte) (string, map[string]interface{}, error) {
	sessions := t.manager.ListSessions()
	meta := map[string]interface{}{"count": len(sessions)}
	if len(sessions) == 0 {
		return "No open browser sessions.", meta, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open browser sessions: %d\n", len(sessions))
	for i, s := range sessions {
		mode := "headed"
		if s.Headless {
			mode = "headless"
		}
		if s.Attached {
			mode += ", attached"
		}
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   URL: %s\n   Title: %s\n   Idle: %s\n",
			i+1, s.Name, mode, s.URL, s.Title, formatDuration(time.Since(s.LastUsed)))
	}
	return b.String(), meta, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
