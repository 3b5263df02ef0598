package browser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrNavigationBlocked is returned when a URL's host is outside the allow-list.
	ErrNavigationBlocked = errors.New("navigation blocked by allowed domains")

	// ErrSessionNotFound is returned for operations on an unknown session name.
	ErrSessionNotFound = errors.New("browser session not found")
)

// DomainGuard restricts navigation to hosts matching a set of glob patterns.
// A nil or empty guard allows everything.
type DomainGuard struct {
	patterns []string
	globs    []glob.Glob
}

// NewDomainGuard compiles the patterns. "*.linkedin.com" matches any depth of
// subdomain but not the apex; list "linkedin.com" as well to allow it.
func NewDomainGuard(patterns []string) (*DomainGuard, error) {
	g := &DomainGuard{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		compiled, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid domain pattern %q: %w", p, err)
		}
		g.patterns = append(g.patterns, p)
		g.globs = append(g.globs, compiled)
	}
	return g, nil
}

// Patterns returns the compiled patterns in input order.
func (g *DomainGuard) Patterns() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.patterns))
	copy(out, g.patterns)
	return out
}

// AllowsHost reports whether host may be visited.
func (g *DomainGuard) AllowsHost(host string) bool {
	if g == nil || len(g.globs) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, m := range g.globs {
		if m.Match(host) {
			return true
		}
	}
	return false
}

// Check returns ErrNavigationBlocked when rawURL points outside the allow-list.
// Non-network schemes such as about: and data: are always allowed.
func (g *DomainGuard) Check(rawURL string) error {
	if g == nil || len(g.globs) == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	if !g.AllowsHost(u.Hostname()) {
		return fmt.Errorf("%w: %s", ErrNavigationBlocked, u.Hostname())
	}
	return nil
}
