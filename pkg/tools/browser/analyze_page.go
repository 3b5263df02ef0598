package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/types"
)

const analyzeMaxHTML = 50000

// AnalyzePageTool asks the LLM for a summary of the page and the selectors
// worth acting on.
type AnalyzePageTool struct {
	sessionTool
	provider llm.Provider
}

func NewAnalyzePageTool(manager *SessionManager, provider llm.Provider) *AnalyzePageTool {
	return &AnalyzePageTool{sessionTool: sessionTool{manager}, provider: provider}
}

func (t *AnalyzePageTool) Name() string { return "analyze_page" }

func (t *AnalyzePageTool) Description() string {
	return "Get an AI summary of the current page: what it is, its main regions, and CSS selectors for the elements you can interact with. Use it when a page is too large or unfamiliar to read directly."
}

func (t *AnalyzePageTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"focus": tools.Prop("string", "What to concentrate on, e.g. 'the post composer' or 'navigation'."),
	})
}

// ShouldShow hides the tool when no provider is wired in.
func (t *AnalyzePageTool) ShouldShow() bool {
	return t.provider != nil && t.sessionTool.ShouldShow()
}

type analyzePageInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
	Focus   string   `xml:"focus"`
}

func (t *AnalyzePageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	if t.provider == nil {
		return "", nil, fmt.Errorf("LLM provider not available")
	}
	var in analyzePageInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}

	raw, err := s.rawHTML("")
	if err != nil {
		return "", nil, err
	}
	cleaned, err := cleanHTML(raw, analyzeMaxHTML)
	if err != nil {
		return "", nil, err
	}

	url := s.Page.URL()
	resp, err := t.provider.Complete(ctx, []*types.Message{
		types.NewUserMessage(analysisPrompt(url, cleaned, in.Focus)),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to analyze page: %w", err)
	}

	meta := map[string]interface{}{
		"session":   s.Name,
		"url":       url,
		"title":     cleaned.Title,
		"truncated": cleaned.Truncated,
	}
	return fmt.Sprintf("Page analysis\nURL: %s\nTitle: %s\n\n%s", url, cleaned.Title, strings.TrimSpace(resp.Content)), meta, nil
}

func analysisPrompt(url string, page *CleanedHTML, focus string) string {
	var b strings.Builder
	b.WriteString("Analyze this web page for an agent that will operate it through CSS selectors.\n\n")
	fmt.Fprintf(&b, "URL: %s\nTitle: %s\n", url, page.Title)
	if page.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", page.Description)
	}
	if focus != "" {
		fmt.Fprintf(&b, "Focus: %s\n", focus)
	}
	b.WriteString("\nCleaned HTML")
	if page.Truncated {
		b.WriteString(" (truncated)")
	}
	b.WriteString(":\n```html\n")
	b.WriteString(page.HTML)
	b.WriteString("\n```\n\n")
	b.WriteString("Answer with these plain-text sections:\n")
	b.WriteString("PAGE TYPE: what kind of page and platform this is.\n")
	b.WriteString("PURPOSE: what a visitor does here.\n")
	b.WriteString("KEY ELEMENTS: interactive elements, each with a selector built from id, aria-label, role, name or data-* attributes.\n")
	b.WriteString("STRUCTURE: the main regions of the page.\n")
	b.WriteString("NEXT ACTIONS: the likely next steps with the selector for each.\n")
	if focus != "" {
		fmt.Fprintf(&b, "Concentrate on: %s.\n", focus)
	}
	b.WriteString("Be concise.")
	return b.String()
}
