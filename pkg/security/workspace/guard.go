// Package workspace confines files written on the agent's behalf to a single
// output directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard rejects output paths that resolve outside its directory.
type Guard struct {
	dir string // absolute, symlinks evaluated
}

// NewGuard creates the directory if needed and guards it.
func NewGuard(dir string) (*Guard, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate output directory symlinks: %w", err)
	}
	return &Guard{dir: evalPath}, nil
}

// Dir returns the guarded directory.
func (g *Guard) Dir() string {
	return g.dir
}

// Resolve maps path to an absolute location inside the directory. Relative
// paths are taken from the directory; absolute ones must already lie in it.
func (g *Guard) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	absPath := filepath.Clean(path)
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(g.dir, absPath)
	}

	resolved := resolveSymlinks(absPath)
	if !g.contains(resolved) {
		return "", fmt.Errorf("path '%s' is outside the output directory %s", path, g.dir)
	}
	return resolved, nil
}

// contains reports whether absPath is the directory or below it.
func (g *Guard) contains(absPath string) bool {
	return absPath == g.dir ||
		strings.HasPrefix(absPath+string(filepath.Separator), g.dir+string(filepath.Separator))
}

// resolveSymlinks evaluates the longest existing prefix of path and appends
// the components that do not exist yet.
func resolveSymlinks(path string) string {
	var missing []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
