package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

var validWaitUntil = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
	"commit":           true,
}

// NavigateTool loads a URL.
type NavigateTool struct{ sessionTool }

func NewNavigateTool(manager *SessionManager) *NavigateTool {
	return &NavigateTool{sessionTool{manager}}
}

func (t *NavigateTool) Name() string { return "browser_navigate" }

func (t *NavigateTool) Description() string {
	return "Navigate the browser to a URL and wait for it to load. Returns the final URL and page title."
}

func (t *NavigateTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"url":        tools.Prop("string", "Absolute URL to open, including the scheme."),
		"wait_until": tools.Prop("string", "When navigation counts as done: load (default), domcontentloaded, networkidle or commit."),
		"timeout_ms": tools.Prop("integer", "Navigation timeout in milliseconds."),
	}, "url")
}

type navigateInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Session   string   `xml:"session"`
	URL       string   `xml:"url"`
	WaitUntil string   `xml:"wait_until"`
	TimeoutMS int      `xml:"timeout_ms"`
}

func (t *NavigateTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in navigateInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	in.URL = strings.TrimSpace(in.URL)
	if in.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}
	waitUntil := strings.ToLower(strings.TrimSpace(in.WaitUntil))
	if waitUntil == "" {
		waitUntil = "load"
	}
	if !validWaitUntil[waitUntil] {
		return "", nil, fmt.Errorf("invalid wait_until %q (use load, domcontentloaded, networkidle or commit)", in.WaitUntil)
	}

	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if err := s.Navigate(in.URL, NavigateOptions{WaitUntil: waitUntil, Timeout: ms(in.TimeoutMS)}); err != nil {
		return "", nil, err
	}

	state, meta := pageState(s)
	return "Navigation complete.\n" + state, meta, nil
}

// GoBackTool goes one step back in history.
type GoBackTool struct{ sessionTool }

func NewGoBackTool(manager *SessionManager) *GoBackTool {
	return &GoBackTool{sessionTool{manager}}
}

func (t *GoBackTool) Name() string { return "browser_go_back" }

func (t *GoBackTool) Description() string {
	return "Go back to the previous page in the browser history."
}

func (t *GoBackTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{})
}

type sessionOnlyInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
}

func (t *GoBackTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in sessionOnlyInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if err := s.GoBack(); err != nil {
		return "", nil, err
	}
	state, meta := pageState(s)
	return "Went back.\n" + state, meta, nil
}
