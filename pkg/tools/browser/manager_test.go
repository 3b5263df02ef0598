package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_GetSession(t *testing.T) {
	m := NewSessionManager()
	_, err := m.GetSession("")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := addFakeSession(t, m, DefaultSessionName, newFakePage())
	got, err := m.GetSession("")
	require.NoError(t, err)
	assert.Same(t, s, got, "empty name resolves to the default session")

	_, err = m.GetSession("other")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_StartSessionRequiresInitialize(t *testing.T) {
	m := NewSessionManager()
	_, err := m.StartSession("", SessionOptions{})
	assert.ErrorContains(t, err, "not initialized")
}

func TestSessionManager_StartSessionLimits(t *testing.T) {
	m := NewSessionManager()
	addFakeSession(t, m, DefaultSessionName, newFakePage())

	_, err := m.StartSession(DefaultSessionName, SessionOptions{})
	assert.ErrorContains(t, err, "already exists")

	m.SetMaxSessions(1)
	_, err = m.StartSession("second", SessionOptions{})
	assert.ErrorContains(t, err, "maximum number of sessions (1)")

	m.SetMaxSessions(0)
	_, err = m.StartSession("second", SessionOptions{})
	assert.ErrorContains(t, err, "maximum number of sessions (1)", "non-positive limits are ignored")
}

func TestSessionManager_ListAndClose(t *testing.T) {
	m := NewSessionManager()
	assert.False(t, m.HasSessions())
	assert.Empty(t, m.ListSessions())

	pageB := newFakePage()
	pageB.url = "https://www.linkedin.com/feed/"
	pageB.title = "Feed"
	addFakeSession(t, m, "b", pageB)
	a := addFakeSession(t, m, "a", newFakePage())

	assert.True(t, m.HasSessions())
	infos := m.ListSessions()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)
	assert.Equal(t, "https://www.linkedin.com/feed/", infos[1].URL)
	assert.Equal(t, "Feed", infos[1].Title)

	require.NoError(t, m.CloseSession("a"))
	assert.True(t, a.Context.(*fakeContext).closed)
	assert.ErrorIs(t, m.CloseSession("a"), ErrSessionNotFound)

	require.NoError(t, m.CloseAll())
	assert.False(t, m.HasSessions())
}

func TestSessionManager_CleanupIdleSessions(t *testing.T) {
	m := NewSessionManager()
	m.SetIdleTimeout(time.Minute)
	assert.Equal(t, time.Minute, m.IdleTimeout())

	stale := addFakeSession(t, m, "stale", newFakePage())
	stale.lastUsedAt = time.Now().Add(-2 * time.Minute)
	addFakeSession(t, m, "fresh", newFakePage())

	require.NoError(t, m.CleanupIdleSessions())
	infos := m.ListSessions()
	require.Len(t, infos, 1)
	assert.Equal(t, "fresh", infos[0].Name)
	assert.True(t, stale.Context.(*fakeContext).closed)
}

func TestSessionManager_SetGuardAppliesToOpenSessions(t *testing.T) {
	m := NewSessionManager()
	assert.Nil(t, m.AllowedDomains())
	s := addFakeSession(t, m, DefaultSessionName, newFakePage())

	guard, err := NewDomainGuard([]string{"linkedin.com"})
	require.NoError(t, err)
	m.SetGuard(guard)

	assert.Equal(t, []string{"linkedin.com"}, m.AllowedDomains())
	assert.ErrorIs(t, s.Navigate("https://example.com", NavigateOptions{}), ErrNavigationBlocked)
}

func TestSessionManager_ShutdownWithoutInitialize(t *testing.T) {
	m := NewSessionManager()
	addFakeSession(t, m, DefaultSessionName, newFakePage())
	require.NoError(t, m.Shutdown())
	assert.False(t, m.HasSessions())
}

func TestWithSessionDefaults(t *testing.T) {
	opts := withSessionDefaults(SessionOptions{})
	assert.Equal(t, &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}, opts.Viewport)
	assert.Equal(t, DefaultTimeout, opts.Timeout)

	custom := withSessionDefaults(SessionOptions{Viewport: &Viewport{Width: 800, Height: 600}, Timeout: time.Second})
	assert.Equal(t, 800, custom.Viewport.Width)
	assert.Equal(t, time.Second, custom.Timeout)
}
