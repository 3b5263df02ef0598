package browser

import (
	"fmt"
	"time"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

// sessionTool is embedded by every tool that acts on an open session. The
// tools stay hidden from the model until a session exists.
type sessionTool struct {
	manager *SessionManager
}

func (b sessionTool) ShouldShow() bool {
	return b.manager.HasSessions()
}

func (b sessionTool) IsLoopBreaking() bool {
	return false
}

func (b sessionTool) session(name string) (*Session, error) {
	return b.manager.GetSession(name)
}

// schema adds the optional session argument to props.
func schema(props map[string]interface{}, required ...string) map[string]interface{} {
	props["session"] = tools.Prop("string", fmt.Sprintf("Browser session name. Defaults to %q.", DefaultSessionName))
	return tools.BaseToolSchema(props, required)
}

func parseArgs(argsXML []byte, v interface{}) error {
	if err := tools.UnmarshalXMLWithFallback(argsXML, v); err != nil {
		return fmt.Errorf("failed to parse arguments: %w", err)
	}
	return nil
}

// pageState is attached to results so the model always sees where it ended up.
func pageState(s *Session) (string, map[string]interface{}) {
	meta := s.GetMetadata()
	summary := fmt.Sprintf("URL: %s\nTitle: %s", meta["url"], meta["title"])
	return summary, map[string]interface{}{
		"session": s.Name,
		"url":     meta["url"],
		"title":   meta["title"],
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
