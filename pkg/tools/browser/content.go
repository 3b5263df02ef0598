package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

// ExtractContentTool returns the page content for the model to read.
type ExtractContentTool struct{ sessionTool }

func NewExtractContentTool(manager *SessionManager) *ExtractContentTool {
	return &ExtractContentTool{sessionTool{manager}}
}

func (t *ExtractContentTool) Name() string { return "browser_extract_content" }

func (t *ExtractContentTool) Description() string {
	return "Read the current page. Formats: markdown (default, readable), text (visible text only), structured (JSON with headings, links and forms), html (cleaned HTML with selector-friendly attributes)."
}

func (t *ExtractContentTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"format":     tools.Prop("string", "markdown, text, structured or html."),
		"selector":   tools.Prop("string", "Only extract this element."),
		"max_length": tools.Prop("integer", fmt.Sprintf("Maximum characters returned. Default %d.", DefaultMaxLength)),
	})
}

type extractInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Session   string   `xml:"session"`
	Format    string   `xml:"format"`
	Selector  string   `xml:"selector"`
	MaxLength int      `xml:"max_length"`
}

func (t *ExtractContentTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in extractInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	format := ExtractFormat(strings.ToLower(strings.TrimSpace(in.Format)))
	switch format {
	case "":
		format = FormatMarkdown
	case FormatMarkdown, FormatText, FormatStructured, FormatHTML:
	default:
		return "", nil, fmt.Errorf("invalid format %q (use markdown, text, structured or html)", in.Format)
	}

	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	content, err := s.ExtractContent(ExtractOptions{Format: format, Selector: in.Selector, MaxLength: in.MaxLength})
	if err != nil {
		return "", nil, err
	}
	state, meta := pageState(s)
	meta["format"] = string(format)
	meta["length"] = len(content)
	return fmt.Sprintf("%s\nFormat: %s\n\n%s", state, format, content), meta, nil
}

// SearchTool finds text on the page.
type SearchTool struct{ sessionTool }

func NewSearchTool(manager *SessionManager) *SearchTool {
	return &SearchTool{sessionTool{manager}}
}

func (t *SearchTool) Name() string { return "browser_search" }

func (t *SearchTool) Description() string {
	return "Search the visible page text for a phrase or regular expression and return each match with surrounding context."
}

func (t *SearchTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"pattern":        tools.Prop("string", "Text or regular expression to find."),
		"regex":          tools.Prop("boolean", "Treat pattern as a regular expression."),
		"case_sensitive": tools.Prop("boolean", "Match case. Default false."),
		"max_results":    tools.Prop("integer", fmt.Sprintf("Maximum matches. Default %d.", DefaultSearchResults)),
	}, "pattern")
}

type searchInput struct {
	XMLName       xml.Name `xml:"arguments"`
	Session       string   `xml:"session"`
	Pattern       string   `xml:"pattern"`
	Regex         bool     `xml:"regex"`
	CaseSensitive bool     `xml:"case_sensitive"`
	MaxResults    int      `xml:"max_results"`
}

func (t *SearchTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in searchInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Pattern == "" {
		return "", nil, fmt.Errorf("pattern is required")
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	results, err := s.Search(SearchOptions{
		Pattern:       in.Pattern,
		Regex:         in.Regex,
		CaseSensitive: in.CaseSensitive,
		MaxResults:    in.MaxResults,
	})
	if err != nil {
		return "", nil, err
	}

	meta := map[string]interface{}{"session": s.Name, "matches": len(results)}
	if len(results) == 0 {
		return fmt.Sprintf("No matches for %q.", in.Pattern), meta, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matches for %q:\n", len(results), in.Pattern)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %q\n   ...%s...\n", i+1, r.Text, r.Context)
	}
	return b.String(), meta, nil
}

// EvaluateTool runs JavaScript in the page.
type EvaluateTool struct{ sessionTool }

func NewEvaluateTool(manager *SessionManager) *EvaluateTool {
	return &EvaluateTool{sessionTool{manager}}
}

func (t *EvaluateTool) Name() string { return "browser_evaluate" }

func (t *EvaluateTool) Description() string {
	return "Evaluate a JavaScript expression in the page and return its JSON result. Wrap statements in an IIFE: (() => { ... })()."
}

func (t *EvaluateTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"code": tools.Prop("string", "JavaScript expression to evaluate."),
	}, "code")
}

type evaluateInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
	Code    string   `xml:"code"`
}

func (t *EvaluateTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in evaluateInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(in.Code) == "" {
		return "", nil, fmt.Errorf("code is required")
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	result, err := s.Evaluate(in.Code)
	if err != nil {
		return "", nil, err
	}
	return "Result:\n" + result, map[string]interface{}{"session": s.Name}, nil
}

// SavePDFTool prints the page to a PDF file.
type SavePDFTool struct{ sessionTool }

func NewSavePDFTool(manager *SessionManager) *SavePDFTool {
	return &SavePDFTool{sessionTool{manager}}
}

func (t *SavePDFTool) Name() string { return "browser_save_pdf" }

func (t *SavePDFTool) Description() string {
	return "Save the current page as a PDF file. Only works when the browser runs headless."
}

func (t *SavePDFTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"path":             tools.Prop("string", "Output file path ending in .pdf."),
		"format":           tools.Prop("string", "Paper format, e.g. A4 (default) or Letter."),
		"print_background": tools.Prop("boolean", "Include background graphics."),
	}, "path")
}

type savePDFInput struct {
	XMLName         xml.Name `xml:"arguments"`
	Session         string   `xml:"session"`
	Path            string   `xml:"path"`
	Format          string   `xml:"format"`
	PrintBackground bool     `xml:"print_background"`
}

func (t *SavePDFTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in savePDFInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	path := strings.TrimSpace(in.Path)
	if path == "" {
		return "", nil, fmt.Errorf("path is required")
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", nil, fmt.Errorf("path must end in .pdf")
	}
	path, err := t.manager.OutputPath(path)
	if err != nil {
		return "", nil, err
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if !s.Headless {
		return "", nil, fmt.Errorf("PDF export requires a headless browser")
	}
	pages, err := s.SavePDF(PDFOptions{Path: path, Format: in.Format, PrintBackground: in.PrintBackground})
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Saved %d-page PDF to %s.", pages, path),
		map[string]interface{}{"session": s.Name, "path": path, "pages": pages}, nil
}
