package browser

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pilot/pkg/logging"
	"github.com/entrhq/pilot/pkg/security/workspace"
)

var browserLog *logging.Logger

func init() {
	var err error
	browserLog, err = logging.NewLogger("browser")
	if err != nil {
		browserLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

// SessionManager owns the Playwright driver and every open session.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	guard       *DomainGuard
	outputs     *workspace.Guard
	maxSessions int
	idleTimeout time.Duration
	initialized bool
}

// NewSessionManager creates a manager. Call Initialize before StartSession.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
	}
}

// Initialize installs the Playwright driver and Chromium if needed and starts
// the driver process. Safe to call more than once.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	browserLog.Debugf("playwright driver started")
	return nil
}

// SetGuard installs the navigation allow-list for current and future sessions.
func (m *SessionManager) SetGuard(g *DomainGuard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guard = g
	for _, s := range m.sessions {
		s.guard = g
	}
}

// SetOutputGuard confines files written by tools, such as PDFs, to the
// guard's directory. Without one, paths are used as given.
func (m *SessionManager) SetOutputGuard(g *workspace.Guard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs = g
}

// OutputPath resolves a tool-supplied file path against the output guard.
func (m *SessionManager) OutputPath(path string) (string, error) {
	m.mu.RLock()
	g := m.outputs
	m.mu.RUnlock()
	if g == nil {
		return path, nil
	}
	return g.Resolve(path)
}

// AllowedDomains returns the guard's patterns, or nil when navigation is unrestricted.
func (m *SessionManager) AllowedDomains() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guard.Patterns()
}

// StartSession opens a browser session. An empty name means DefaultSessionName.
//
// With CDPURL set the session attaches to a running browser; with UserDataDir
// it launches on that persistent profile; otherwise it launches a fresh
// browser from ExecutablePath, or the bundled Chromium.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	if name == "" {
		name = DefaultSessionName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	opts = withSessionDefaults(opts)

	var (
		s   *Session
		err error
	)
	switch {
	case opts.CDPURL != "":
		s, err = m.attach(opts)
	case opts.UserDataDir != "":
		s, err = m.launchPersistent(opts)
	default:
		s, err = m.launch(opts)
	}
	if err != nil {
		return nil, err
	}

	s.Page.SetDefaultTimeout(millis(opts.Timeout))
	now := time.Now()
	s.Name = name
	s.Headless = opts.Headless
	s.CreatedAt = now
	s.lastUsedAt = now
	s.guard = m.guard

	m.sessions[name] = s
	browserLog.Infof("browser session %q started (headless=%t attached=%t)", name, s.Headless, s.Attached)
	return s, nil
}

func withSessionDefaults(opts SessionOptions) SessionOptions {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// executable resolves the configured browser binary, falling back to the
// bundled Chromium when it is missing.
func executable(path string) *string {
	resolved, ok := resolveExecutable(path)
	if !ok {
		browserLog.Warnf("browser executable %q not found, using bundled Chromium", path)
	}
	if resolved == "" {
		return nil
	}
	return playwright.String(resolved)
}

func (m *SessionManager) launch(opts SessionOptions) (*Session, error) {
	b, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:       playwright.Bool(opts.Headless),
		ExecutablePath: executable(opts.ExecutablePath),
		Args:           opts.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
	})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &Session{Browser: b, Context: bctx, Page: page}, nil
}

func (m *SessionManager) launchPersistent(opts SessionOptions) (*Session, error) {
	bctx, err := m.playwright.Chromium.LaunchPersistentContext(opts.UserDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:       playwright.Bool(opts.Headless),
			ExecutablePath: executable(opts.ExecutablePath),
			Args:           opts.Args,
			Viewport:       &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser with profile %s: %w", opts.UserDataDir, err)
	}

	page, err := firstPage(bctx)
	if err != nil {
		_ = bctx.Close()
		return nil, err
	}
	return &Session{Context: bctx, Page: page}, nil
}

func (m *SessionManager) attach(opts SessionOptions) (*Session, error) {
	b, err := m.playwright.Chromium.ConnectOverCDP(opts.CDPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", opts.CDPURL, err)
	}

	var bctx playwright.BrowserContext
	if existing := b.Contexts(); len(existing) > 0 {
		bctx = existing[0]
	} else if bctx, err = b.NewContext(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := firstPage(bctx)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &Session{Browser: b, Context: bctx, Page: page, Attached: true}, nil
}

func firstPage(bctx playwright.BrowserContext) (playwright.Page, error) {
	if pages := bctx.Pages(); len(pages) > 0 {
		return pages[0], nil
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

// CloseSession closes and forgets a session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	s, ok := m.sessions[name]
	delete(m.sessions, name)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	browserLog.Infof("closing browser session %q", name)
	return s.close()
}

// GetSession returns the named session. An empty name means DefaultSessionName.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	if name == "" {
		name = DefaultSessionName
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	return s, nil
}

// ListSessions returns a snapshot of every open session, sorted by name.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HasSessions reports whether any session is open.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes every session and returns the joined close errors.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for name, s := range sessions {
		if err := s.close(); err != nil {
			errs = append(errs, fmt.Errorf("close session %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown closes all sessions and stops the Playwright driver.
func (m *SessionManager) Shutdown() error {
	closeErr := m.CloseAll()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return closeErr
	}
	m.initialized = false
	if err := m.playwright.Stop(); err != nil {
		return errors.Join(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
	}
	browserLog.Debugf("playwright driver stopped")
	return closeErr
}

// CleanupIdleSessions closes sessions unused for longer than the idle timeout.
func (m *SessionManager) CleanupIdleSessions() error {
	cutoff := time.Now().Add(-m.IdleTimeout())

	m.mu.Lock()
	var idle []*Session
	for name, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, name)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range idle {
		browserLog.Infof("closing idle browser session %q", s.Name)
		if err := s.close(); err != nil {
			errs = append(errs, fmt.Errorf("close idle session %q: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// SetMaxSessions sets the session cap. Values below one are ignored.
func (m *SessionManager) SetMaxSessions(n int) {
	if n < 1 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = n
}

// SetIdleTimeout sets how long a session may stay unused before cleanup.
func (m *SessionManager) SetIdleTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = d
}

// IdleTimeout returns the configured idle timeout.
func (m *SessionManager) IdleTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idleTimeout
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func optMillis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(millis(d))
}
