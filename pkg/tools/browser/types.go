package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one browser window the agent drives.
type Session struct {
	Name string

	// Browser is nil when the session runs on a persistent profile, where
	// Playwright only hands out a context.
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page

	Headless  bool
	Attached  bool // connected over CDP to a browser pilot did not start
	CreatedAt time.Time

	guard *DomainGuard

	mu         sync.Mutex
	lastUsedAt time.Time
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	Headless bool

	// ExecutablePath points at a locally installed Chromium-family browser
	// (Chrome, Brave, Edge). Empty or missing means the bundled Chromium.
	ExecutablePath string

	// CDPURL attaches to an already running browser instead of launching one,
	// e.g. http://localhost:9222.
	CDPURL string

	// UserDataDir launches with a persistent profile so existing logins
	// survive between runs.
	UserDataDir string

	Viewport *Viewport

	// Timeout is the default per-operation timeout.
	Timeout time.Duration

	// Args are extra command-line flags for the browser process.
	Args []string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation.
type NavigateOptions struct {
	// WaitUntil is one of load, domcontentloaded, networkidle or commit.
	WaitUntil string
	Timeout   time.Duration
}

// ExtractFormat selects how page content is rendered for the model.
type ExtractFormat string

const (
	FormatMarkdown   ExtractFormat = "markdown"
	FormatText       ExtractFormat = "text"
	FormatStructured ExtractFormat = "structured"
	FormatHTML       ExtractFormat = "html"
)

// ExtractOptions configures content extraction.
type ExtractOptions struct {
	Format ExtractFormat

	// Selector limits extraction to the first matching element.
	Selector string

	// MaxLength caps the result in bytes. Zero means DefaultMaxLength.
	MaxLength int
}

// StructuredContent is the FormatStructured payload.
type StructuredContent struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings"`
	Links       []Link   `json:"links"`
	Forms       []Form   `json:"forms,omitempty"`
	Body        string   `json:"body"`
}

// Link is a hyperlink with its visible text.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Form summarises a form and the names of its fields.
type Form struct {
	Action string   `json:"action,omitempty"`
	Method string   `json:"method,omitempty"`
	Fields []string `json:"fields"`
}

// ClickOptions configures element clicks.
type ClickOptions struct {
	Selector string
	// Button is left, right or middle.
	Button     string
	ClickCount int
	Timeout    time.Duration
}

// FillOptions configures form input filling.
type FillOptions struct {
	Selector string
	Value    string
	Timeout  time.Duration
}

// TypeOptions configures keystroke-by-keystroke typing. Rich editors such as
// the LinkedIn post composer ignore Fill and need real key events.
type TypeOptions struct {
	// Selector is clicked first to focus it. Empty types into whatever has focus.
	Selector string
	Text     string
	Delay    time.Duration
	Timeout  time.Duration
}

// ScrollDirection is up or down.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

// ScrollOptions configures page scrolling.
type ScrollOptions struct {
	Direction ScrollDirection
	// Amount in pixels. Zero means one viewport height.
	Amount int
}

// WaitOptions configures waiting. Either Selector or Duration is required.
type WaitOptions struct {
	Selector string
	// State is attached, detached, visible or hidden.
	State    string
	Duration time.Duration
	Timeout  time.Duration
}

// SearchOptions configures page search.
type SearchOptions struct {
	Pattern       string
	Regex         bool
	CaseSensitive bool
	MaxResults    int
}

// SearchResult is a single match with surrounding text.
type SearchResult struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// PDFOptions configures SavePDF.
type PDFOptions struct {
	Path            string
	Format          string
	PrintBackground bool
}

// SessionInfo is a read-only snapshot of a session.
type SessionInfo struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Headless  bool      `json:"headless"`
	Attached  bool      `json:"attached"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

const (
	// DefaultSessionName is the session the CLI opens and tools fall back to.
	DefaultSessionName = "main"

	DefaultTimeout        = 30 * time.Second
	DefaultMaxLength      = 10000
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultSearchResults  = 20
	DefaultPDFFormat      = "A4"

	searchContextChars = 50
)
