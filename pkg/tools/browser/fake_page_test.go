package browser

import (
	"errors"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

// fakePage implements the slice of playwright.Page the package uses. Any
// other method panics through the nil embedded interface.
type fakePage struct {
	playwright.Page

	url       string
	title     string
	content   string
	innerHTML map[string]string
	innerText map[string]string
	evalValue interface{}
	err       error

	gotos    []string
	clicks   []string
	fills    map[string]string
	waited   []string
	sleeps   []float64
	backs    int
	keyboard *fakeKeyboard
	mouse    *fakeMouse
}

func newFakePage() *fakePage {
	return &fakePage{
		url:       "about:blank",
		innerHTML: map[string]string{},
		innerText: map[string]string{},
		fills:     map[string]string{},
		keyboard:  &fakeKeyboard{},
		mouse:     &fakeMouse{},
	}
}

func (p *fakePage) URL() string              { return p.url }
func (p *fakePage) Title() (string, error)   { return p.title, nil }
func (p *fakePage) Content() (string, error) { return p.content, p.err }

func (p *fakePage) InnerHTML(selector string, _ ...playwright.PageInnerHTMLOptions) (string, error) {
	html, ok := p.innerHTML[selector]
	if !ok {
		return "", errors.New("no element for " + selector)
	}
	return html, nil
}

func (p *fakePage) InnerText(selector string, _ ...playwright.PageInnerTextOptions) (string, error) {
	text, ok := p.innerText[selector]
	if !ok {
		return "", errors.New("no element for " + selector)
	}
	return text, nil
}

func (p *fakePage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.gotos = append(p.gotos, url)
	p.url = url
	return nil, nil
}

func (p *fakePage) GoBack(_ ...playwright.PageGoBackOptions) (playwright.Response, error) {
	p.backs++
	return nil, p.err
}

func (p *fakePage) Click(selector string, _ ...playwright.PageClickOptions) error {
	if p.err != nil {
		return p.err
	}
	p.clicks = append(p.clicks, selector)
	return nil
}

func (p *fakePage) Fill(selector, value string, _ ...playwright.PageFillOptions) error {
	if p.err != nil {
		return p.err
	}
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Keyboard() playwright.Keyboard { return p.keyboard }
func (p *fakePage) Mouse() playwright.Mouse       { return p.mouse }

func (p *fakePage) ViewportSize() *playwright.Size {
	return &playwright.Size{Width: 1280, Height: 600}
}

func (p *fakePage) WaitForSelector(selector string, _ ...playwright.PageWaitForSelectorOptions) (playwright.ElementHandle, error) {
	p.waited = append(p.waited, selector)
	return nil, p.err
}

func (p *fakePage) WaitForTimeout(timeout float64) {
	p.sleeps = append(p.sleeps, timeout)
}

func (p *fakePage) Evaluate(_ string, _ ...interface{}) (interface{}, error) {
	return p.evalValue, p.err
}

func (p *fakePage) SetDefaultTimeout(float64) {}

type fakeKeyboard struct {
	playwright.Keyboard
	typed   []string
	pressed []string
}

func (k *fakeKeyboard) Type(text string, _ ...playwright.KeyboardTypeOptions) error {
	k.typed = append(k.typed, text)
	return nil
}

func (k *fakeKeyboard) Press(key string, _ ...playwright.KeyboardPressOptions) error {
	k.pressed = append(k.pressed, key)
	return nil
}

type fakeMouse struct {
	playwright.Mouse
	wheels [][2]float64
}

func (m *fakeMouse) Wheel(dx, dy float64) error {
	m.wheels = append(m.wheels, [2]float64{dx, dy})
	return nil
}

type fakeContext struct {
	playwright.BrowserContext
	closed bool
}

func (c *fakeContext) Close(_ ...playwright.BrowserContextCloseOptions) error {
	c.closed = true
	return nil
}

// addFakeSession registers a session backed by page without launching a browser.
func addFakeSession(t *testing.T, m *SessionManager, name string, page *fakePage) *Session {
	t.Helper()
	now := time.Now()
	s := &Session{
		Name:       name,
		Context:    &fakeContext{},
		Page:       page,
		Headless:   true,
		CreatedAt:  now,
		lastUsedAt: now,
	}
	m.mu.Lock()
	s.guard = m.guard
	m.sessions[name] = s
	m.mu.Unlock()
	return s
}
