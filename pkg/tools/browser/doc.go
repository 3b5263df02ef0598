// Package browser drives a Chromium-family browser through Playwright on
// behalf of the agent.
//
// A SessionManager owns the Playwright driver and a set of named sessions.
// The CLI opens one session, "main", before the agent starts and closes it
// after the user confirms; the agent only ever acts inside it. A session is
// started in one of three ways:
//
//   - SessionOptions.CDPURL: attach to a browser that is already running with
//     --remote-debugging-port.
//   - SessionOptions.UserDataDir: launch on a persistent profile so existing
//     logins are reused.
//   - otherwise: launch a fresh browser from ExecutablePath, falling back to
//     the bundled Chromium when the binary is missing.
//
// The tools in this package are hidden from the model until a session is
// open. Each takes an optional session argument that defaults to
// DefaultSessionName. Navigation goes through a DomainGuard when one is set.
//
//	manager := browser.NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("", browser.SessionOptions{
//	    ExecutablePath: browser.DefaultExecutablePath(runtime.GOOS),
//	})
//	if err != nil {
//	    return err
//	}
//	err = session.Navigate("https://www.linkedin.com/feed/", browser.NavigateOptions{})
package browser
