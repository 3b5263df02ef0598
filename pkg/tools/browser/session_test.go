package browser

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionNavigate_Guarded(t *testing.T) {
	m := NewSessionManager()
	guard, err := NewDomainGuard([]string{"*.linkedin.com"})
	require.NoError(t, err)
	m.SetGuard(guard)

	page := newFakePage()
	s := addFakeSession(t, m, DefaultSessionName, page)

	require.NoError(t, s.Navigate("https://www.linkedin.com/feed/", NavigateOptions{WaitUntil: "load"}))
	err = s.Navigate("https://example.com/", NavigateOptions{})
	assert.ErrorIs(t, err, ErrNavigationBlocked)
	assert.Equal(t, []string{"https://www.linkedin.com/feed/"}, page.gotos)
}

func TestSessionNavigate_WrapsDriverError(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	page.err = errors.New("net::ERR_NAME_NOT_RESOLVED")
	s := addFakeSession(t, m, DefaultSessionName, page)

	err := s.Navigate("https://nowhere.invalid", NavigateOptions{})
	assert.ErrorContains(t, err, "navigation failed")
	assert.ErrorIs(t, err, page.err)
}

func TestSessionType_FocusesThenTypes(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	s := addFakeSession(t, m, DefaultSessionName, page)

	require.NoError(t, s.Type(TypeOptions{Selector: "[role=textbox]", Text: "¡Hola! 🎉"}))
	assert.Equal(t, []string{"[role=textbox]"}, page.clicks)
	assert.Equal(t, []string{"¡Hola! 🎉"}, page.keyboard.typed)

	require.NoError(t, s.Type(TypeOptions{Text: "más"}))
	assert.Len(t, page.clicks, 1, "no selector means no focus click")

	require.NoError(t, s.PressKey("Control+Enter"))
	assert.Equal(t, []string{"Control+Enter"}, page.keyboard.pressed)
}

func TestSessionScroll(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	s := addFakeSession(t, m, DefaultSessionName, page)

	require.NoError(t, s.Scroll(ScrollOptions{}))
	require.NoError(t, s.Scroll(ScrollOptions{Direction: ScrollUp, Amount: 200}))
	assert.Error(t, s.Scroll(ScrollOptions{Direction: "sideways"}))
	assert.Equal(t, [][2]float64{{0, 600}, {0, -200}}, page.mouse.wheels)
}

func TestSessionWait(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	s := addFakeSession(t, m, DefaultSessionName, page)

	assert.Error(t, s.Wait(WaitOptions{}))
	require.NoError(t, s.Wait(WaitOptions{Duration: 1500 * time.Millisecond}))
	require.NoError(t, s.Wait(WaitOptions{Selector: "#done", State: "visible"}))
	assert.Equal(t, []float64{1500}, page.sleeps)
	assert.Equal(t, []string{"#done"}, page.waited)
}

func TestSessionSearch(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	page.innerText["body"] = "Start a post\nPost   something FUN.\nPost again"
	s := addFakeSession(t, m, DefaultSessionName, page)

	results, err := s.Search(SearchOptions{Pattern: "post"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Post", results[1].Text)
	assert.NotContains(t, results[1].Context, "\n", "context whitespace is collapsed")

	results, err = s.Search(SearchOptions{Pattern: "post", CaseSensitive: true})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = s.Search(SearchOptions{Pattern: `F.N`, Regex: true, MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "FUN", results[0].Text)

	results, err = s.Search(SearchOptions{Pattern: "a.b"})
	require.NoError(t, err)
	assert.Empty(t, results, "literal search escapes metacharacters")

	_, err = s.Search(SearchOptions{Pattern: "(", Regex: true})
	assert.ErrorContains(t, err, "invalid search pattern")

	_, err = s.Search(SearchOptions{})
	assert.Error(t, err)
}

func TestSearchText_Context(t *testing.T) {
	text := "0123456789" + "needle" + "0123456789"
	results := searchText(text, regexp.MustCompile("needle"), 5)
	require.Len(t, results, 1)
	assert.Equal(t, text, results[0].Context)
}

func TestSessionEvaluate(t *testing.T) {
	m := NewSessionManager()
	page := newFakePage()
	s := addFakeSession(t, m, DefaultSessionName, page)

	page.evalValue = "plain"
	out, err := s.Evaluate("document.title")
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	page.evalValue = map[string]interface{}{"count": 3}
	out, err = s.Evaluate("({count: 3})")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, out)

	page.evalValue = nil
	out, err = s.Evaluate("undefined")
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func TestSessionSavePDF_RequiresPath(t *testing.T) {
	m := NewSessionManager()
	s := addFakeSession(t, m, DefaultSessionName, newFakePage())
	_, err := s.SavePDF(PDFOptions{})
	assert.ErrorContains(t, err, "path is required")
}

func TestSessionTouchUpdatesLastUsed(t *testing.T) {
	m := NewSessionManager()
	s := addFakeSession(t, m, DefaultSessionName, newFakePage())
	s.lastUsedAt = time.Now().Add(-time.Hour)

	s.GetMetadata()
	assert.WithinDuration(t, time.Now(), s.LastUsed(), time.Second)
}
