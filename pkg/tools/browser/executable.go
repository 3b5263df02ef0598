package browser

import (
	"os"
	"path/filepath"
)

// DefaultExecutablePath returns where Google Chrome is normally installed on
// goos, or "" when there is no conventional location.
func DefaultExecutablePath(goos string) string {
	switch goos {
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	case "windows":
		return filepath.Join(`C:\Program Files`, "Google", "Chrome", "Application", "chrome.exe")
	case "linux":
		return "/usr/bin/google-chrome"
	default:
		return ""
	}
}

// resolveExecutable returns path if it exists. Otherwise it returns "" so
// Playwright launches its bundled Chromium, and ok=false so the caller can warn.
func resolveExecutable(path string) (resolved string, ok bool) {
	if path == "" {
		return "", true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
