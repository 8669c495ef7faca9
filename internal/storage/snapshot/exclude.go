package snapshot

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludedNames are dependency caches and build outputs that are
// never captured, at any depth.
var DefaultExcludedNames = []string{
	"node_modules",
	"target",
	"dist",
	"build",
}

// Excluder decides which directory entries are left out of a snapshot.
type Excluder struct {
	names    map[string]struct{}
	patterns []glob.Glob
}

// NewExcluder creates an excluder with the default names and the given glob
// patterns. Patterns use "/" as separator and are matched against both the
// root-relative path and the entry name.
func NewExcluder(patterns []string) (*Excluder, error) {
	e := &Excluder{
		names: make(map[string]struct{}, len(DefaultExcludedNames)),
	}
	for _, name := range DefaultExcludedNames {
		e.names[name] = struct{}{}
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		e.patterns = append(e.patterns, g)
	}

	return e, nil
}

// Skip reports whether the entry should be excluded.
// rel is the slash-separated path relative to the snapshot root.
func (e *Excluder) Skip(rel, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := e.names[name]; ok {
		return true
	}
	for _, g := range e.patterns {
		if g.Match(rel) || g.Match(name) {
			return true
		}
	}
	return false
}
