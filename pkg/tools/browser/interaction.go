package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

// ClickTool clicks an element.
type ClickTool struct{ sessionTool }

func NewClickTool(manager *SessionManager) *ClickTool {
	return &ClickTool{sessionTool{manager}}
}

func (t *ClickTool) Name() string { return "browser_click" }

func (t *ClickTool) Description() string {
	return "Click an element identified by a Playwright selector, e.g. button:has-text('Start a post') or [aria-label='Post']."
}

func (t *ClickTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"selector":    tools.Prop("string", "Playwright selector of the element to click."),
		"button":      tools.Prop("string", "Mouse button: left (default), right or middle."),
		"click_count": tools.Prop("integer", "Number of clicks, 2 for a double click."),
		"timeout_ms":  tools.Prop("integer", "How long to wait for the element, in milliseconds."),
	}, "selector")
}

type clickInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Session    string   `xml:"session"`
	Selector   string   `xml:"selector"`
	Button     string   `xml:"button"`
	ClickCount int      `xml:"click_count"`
	TimeoutMS  int      `xml:"timeout_ms"`
}

func (t *ClickTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in clickInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Selector == "" {
		return "", nil, fmt.Errorf("selector is required")
	}
	switch in.Button {
	case "", "left", "right", "middle":
	default:
		return "", nil, fmt.Errorf("invalid button %q (use left, right or middle)", in.Button)
	}

	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	err = s.Click(ClickOptions{
		Selector:   in.Selector,
		Button:     in.Button,
		ClickCount: in.ClickCount,
		Timeout:    ms(in.TimeoutMS),
	})
	if err != nil {
		return "", nil, err
	}
	state, meta := pageState(s)
	return fmt.Sprintf("Clicked %s.\n%s", in.Selector, state), meta, nil
}

// FillTool sets the value of a form field.
type FillTool struct{ sessionTool }

func NewFillTool(manager *SessionManager) *FillTool {
	return &FillTool{sessionTool{manager}}
}

func (t *FillTool) Name() string { return "browser_fill_form" }

func (t *FillTool) Description() string {
	return "Replace the value of an input or textarea. For rich text editors (contenteditable) use browser_type instead."
}

func (t *FillTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"selector":   tools.Prop("string", "Playwright selector of the field."),
		"value":      tools.Prop("string", "Value to set."),
		"timeout_ms": tools.Prop("integer", "How long to wait for the field, in milliseconds."),
	}, "selector", "value")
}

type fillInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Session   string   `xml:"session"`
	Selector  string   `xml:"selector"`
	Value     string   `xml:"value"`
	TimeoutMS int      `xml:"timeout_ms"`
}

func (t *FillTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in fillInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Selector == "" {
		return "", nil, fmt.Errorf("selector is required")
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if err := s.Fill(FillOptions{Selector: in.Selector, Value: in.Value, Timeout: ms(in.TimeoutMS)}); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Filled %s with %d characters.", in.Selector, len([]rune(in.Value))),
		map[string]interface{}{"session": s.Name, "selector": in.Selector}, nil
}

// TypeTool types text with real key events.
type TypeTool struct{ sessionTool }

func NewTypeTool(manager *SessionManager) *TypeTool {
	return &TypeTool{sessionTool{manager}}
}

func (t *TypeTool) Name() string { return "browser_type" }

func (t *TypeTool) Description() string {
	return "Type text key by key. Clicks the selector first when given, otherwise types into the focused element. Works with rich editors such as post composers, and with emoji."
}

func (t *TypeTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"selector":   tools.Prop("string", "Element to click before typing."),
		"text":       tools.Prop("string", "Text to type."),
		"delay_ms":   tools.Prop("integer", "Delay between key presses in milliseconds."),
		"timeout_ms": tools.Prop("integer", "How long to wait for the selector, in milliseconds."),
	}, "text")
}

type typeInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Session   string   `xml:"session"`
	Selector  string   `xml:"selector"`
	Text      string   `xml:"text"`
	DelayMS   int      `xml:"delay_ms"`
	TimeoutMS int      `xml:"timeout_ms"`
}

func (t *TypeTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in typeInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Text == "" {
		return "", nil, fmt.Errorf("text is required")
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	err = s.Type(TypeOptions{
		Selector: in.Selector,
		Text:     in.Text,
		Delay:    ms(in.DelayMS),
		Timeout:  ms(in.TimeoutMS),
	})
	if err != nil {
		return "", nil, err
	}
	target := in.Selector
	if target == "" {
		target = "the focused element"
	}
	return fmt.Sprintf("Typed %d characters into %s.", len([]rune(in.Text)), target),
		map[string]interface{}{"session": s.Name}, nil
}

// PressKeyTool presses a single key or chord.
type PressKeyTool struct{ sessionTool }

func NewPressKeyTool(manager *SessionManager) *PressKeyTool {
	return &PressKeyTool{sessionTool{manager}}
}

func (t *PressKeyTool) Name() string { return "browser_press_key" }

func (t *PressKeyTool) Description() string {
	return "Press a key or key combination on the focused element, e.g. Enter, Escape, Tab, Control+Enter."
}

func (t *PressKeyTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"key": tools.Prop("string", "Key name as understood by Playwright."),
	}, "key")
}

type pressKeyInput struct {
	XMLName xml.Name `xml:"arguments"`
	Session string   `xml:"session"`
	Key     string   `xml:"key"`
}

func (t *PressKeyTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in pressKeyInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return "", nil, fmt.Errorf("key is required")
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if err := s.PressKey(key); err != nil {
		return "", nil, err
	}
	state, meta := pageState(s)
	return fmt.Sprintf("Pressed %s.\n%s", key, state), meta, nil
}

// ScrollTool scrolls the page.
type ScrollTool struct{ sessionTool }

func NewScrollTool(manager *SessionManager) *ScrollTool {
	return &ScrollTool{sessionTool{manager}}
}

func (t *ScrollTool) Name() string { return "browser_scroll" }

func (t *ScrollTool) Description() string {
	return "Scroll the page up or down, by default one screen."
}

func (t *ScrollTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"direction": tools.Prop("string", "up or down (default)."),
		"amount":    tools.Prop("integer", "Pixels to scroll."),
	})
}

type scrollInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Session   string   `xml:"session"`
	Direction string   `xml:"direction"`
	Amount    int      `xml:"amount"`
}

func (t *ScrollTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in scrollInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	dir := ScrollDirection(strings.ToLower(strings.TrimSpace(in.Direction)))
	if dir == "" {
		dir = ScrollDown
	}
	if dir != ScrollUp && dir != ScrollDown {
		return "", nil, fmt.Errorf("invalid direction %q (use up or down)", in.Direction)
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	if err := s.Scroll(ScrollOptions{Direction: dir, Amount: in.Amount}); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Scrolled %s.", dir), map[string]interface{}{"session": s.Name}, nil
}

var validWaitStates = map[string]bool{
	"attached": true,
	"detached": true,
	"visible":  true,
	"hidden":   true,
}

// WaitTool waits for an element state or a fixed time.
type WaitTool struct{ sessionTool }

func NewWaitTool(manager *SessionManager) *WaitTool {
	return &WaitTool{sessionTool{manager}}
}

func (t *WaitTool) Name() string { return "browser_wait" }

func (t *WaitTool) Description() string {
	return "Wait until an element reaches a state (visible by default), or pause for duration_ms when no selector is given."
}

func (t *WaitTool) Schema() map[string]interface{} {
	return schema(map[string]interface{}{
		"selector":    tools.Prop("string", "Element to wait for."),
		"state":       tools.Prop("string", "attached, detached, visible (default) or hidden."),
		"duration_ms": tools.Prop("integer", "Fixed pause in milliseconds when no selector is given."),
		"timeout_ms":  tools.Prop("integer", "Maximum wait for the selector, in milliseconds."),
	})
}

type waitInput struct {
	XMLName    xml.Name `xml:"arguments"`
	Session    string   `xml:"session"`
	Selector   string   `xml:"selector"`
	State      string   `xml:"state"`
	DurationMS int      `xml:"duration_ms"`
	TimeoutMS  int      `xml:"timeout_ms"`
}

func (t *WaitTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in waitInput
	if err := parseArgs(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Selector == "" && in.DurationMS <= 0 {
		return "", nil, fmt.Errorf("selector or duration_ms is required")
	}
	if in.State != "" && !validWaitStates[in.State] {
		return "", nil, fmt.Errorf("invalid state %q (use attached, detached, visible or hidden)", in.State)
	}
	s, err := t.session(in.Session)
	if err != nil {
		return "", nil, err
	}
	err = s.Wait(WaitOptions{
		Selector: in.Selector,
		State:    in.State,
		Duration: ms(in.DurationMS),
		Timeout:  ms(in.TimeoutMS),
	})
	if err != nil {
		return "", nil, err
	}
	if in.Selector == "" {
		return fmt.Sprintf("Waited %dms.", in.DurationMS), map[string]interface{}{"session": s.Name}, nil
	}
	state := in.State
	if state == "" {
		state = "visible"
	}
	return fmt.Sprintf("%s is %s.", in.Selector, state), map[string]interface{}{"session": s.Name}, nil
}
