package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/playwright-community/playwright-go"
)

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsed returns when the session last ran an operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	title, _ := s.Page.Title()
	return SessionInfo{
		Name:      s.Name,
		URL:       s.Page.URL(),
		Title:     title,
		Headless:  s.Headless,
		Attached:  s.Attached,
		CreatedAt: s.CreatedAt,
		LastUsed:  s.LastUsed(),
	}
}

func (s *Session) close() error {
	if s.Browser != nil {
		return s.Browser.Close()
	}
	return s.Context.Close()
}

// Navigate loads url in the session's page, subject to the domain guard.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.touch()
	if err := s.guard.Check(url); err != nil {
		return err
	}

	gotoOpts := playwright.PageGotoOptions{Timeout: optMillis(opts.Timeout)}
	if opts.WaitUntil != "" {
		state := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &state
	}
	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// GoBack navigates one entry back in history.
func (s *Session) GoBack() error {
	s.touch()
	if _, err := s.Page.GoBack(); err != nil {
		return fmt.Errorf("go back failed: %w", err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	s.touch()
	clickOpts := playwright.PageClickOptions{Timeout: optMillis(opts.Timeout)}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		clickOpts.ClickCount = playwright.Int(opts.ClickCount)
	}
	if err := s.Page.Click(opts.Selector, clickOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill replaces the value of an input or textarea.
func (s *Session) Fill(opts FillOptions) error {
	s.touch()
	if err := s.Page.Fill(opts.Selector, opts.Value, playwright.PageFillOptions{Timeout: optMillis(opts.Timeout)}); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// Type sends real key events, focusing Selector first when it is set.
func (s *Session) Type(opts TypeOptions) error {
	s.touch()
	if opts.Selector != "" {
		if err := s.Page.Click(opts.Selector, playwright.PageClickOptions{Timeout: optMillis(opts.Timeout)}); err != nil {
			return fmt.Errorf("focus %s failed: %w", opts.Selector, err)
		}
	}
	typeOpts := playwright.KeyboardTypeOptions{}
	if opts.Delay > 0 {
		typeOpts.Delay = playwright.Float(millis(opts.Delay))
	}
	if err := s.Page.Keyboard().Type(opts.Text, typeOpts); err != nil {
		return fmt.Errorf("type failed: %w", err)
	}
	return nil
}

// PressKey presses a key or chord such as "Enter" or "Control+Enter".
func (s *Session) PressKey(key string) error {
	s.touch()
	if err := s.Page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("press %s failed: %w", key, err)
	}
	return nil
}

// Scroll moves the viewport with the mouse wheel.
func (s *Session) Scroll(opts ScrollOptions) error {
	s.touch()
	amount := opts.Amount
	if amount <= 0 {
		amount = DefaultViewportHeight
		if vp := s.Page.ViewportSize(); vp != nil {
			amount = vp.Height
		}
	}
	delta := float64(amount)
	switch opts.Direction {
	case ScrollUp:
		delta = -delta
	case ScrollDown, "":
	default:
		return fmt.Errorf("invalid scroll direction %q (use up or down)", opts.Direction)
	}
	if err := s.Page.Mouse().Wheel(0, delta); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// Wait blocks for a selector state, or for a fixed duration when no selector is given.
func (s *Session) Wait(opts WaitOptions) error {
	s.touch()
	if opts.Selector == "" {
		if opts.Duration <= 0 {
			return fmt.Errorf("selector or duration is required for wait")
		}
		s.Page.WaitForTimeout(millis(opts.Duration))
		return nil
	}

	waitOpts := playwright.PageWaitForSelectorOptions{Timeout: optMillis(opts.Timeout)}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		waitOpts.State = &state
	}
	if _, err := s.Page.WaitForSelector(opts.Selector, waitOpts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// Search finds occurrences of a literal or regex pattern in the page's visible text.
func (s *Session) Search(opts SearchOptions) ([]SearchResult, error) {
	s.touch()
	if opts.Pattern == "" {
		return nil, fmt.Errorf("search pattern is required")
	}

	expr := opts.Pattern
	if !opts.Regex {
		expr = regexp.QuoteMeta(expr)
	}
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}

	text, err := s.Page.InnerText("body")
	if err != nil {
		return nil, fmt.Errorf("failed to get page text: %w", err)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultSearchResults
	}
	return searchText(text, re, limit), nil
}

func searchText(text string, re *regexp.Regexp, limit int) []SearchResult {
	var results []SearchResult
	for _, loc := range re.FindAllStringIndex(text, limit) {
		if loc[0] == loc[1] {
			continue
		}
		from := max(0, loc[0]-searchContextChars)
		to := min(len(text), loc[1]+searchContextChars)
		results = append(results, SearchResult{
			Text:    text[loc[0]:loc[1]],
			Context: collapseSpace(text[from:to]),
		})
	}
	return results
}

// Evaluate runs a JavaScript expression in the page and returns its JSON-encoded result.
func (s *Session) Evaluate(script string) (string, error) {
	s.touch()
	value, err := s.Page.Evaluate(script)
	if err != nil {
		return "", fmt.Errorf("evaluate failed: %w", err)
	}
	if str, ok := value.(string); ok {
		return str, nil
	}
	out, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value), nil
	}
	return string(out), nil
}

// SavePDF prints the page to opts.Path and returns the number of pages
// written. Chromium only prints in headless mode.
func (s *Session) SavePDF(opts PDFOptions) (int, error) {
	s.touch()
	if opts.Path == "" {
		return 0, fmt.Errorf("pdf path is required")
	}
	format := opts.Format
	if format == "" {
		format = DefaultPDFFormat
	}
	data, err := s.Page.PDF(playwright.PagePdfOptions{
		Path:            playwright.String(opts.Path),
		Format:          playwright.String(format),
		PrintBackground: playwright.Bool(opts.PrintBackground),
	})
	if err != nil {
		return 0, fmt.Errorf("print to pdf failed: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read generated pdf: %w", err)
	}
	return pages, nil
}

// GetMetadata returns the page title and URL.
func (s *Session) GetMetadata() map[string]string {
	s.touch()
	title, _ := s.Page.Title()
	return map[string]string{
		"title": title,
		"url":   s.Page.URL(),
	}
}
