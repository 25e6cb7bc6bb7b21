package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// glob is a compiled path pattern in doublestar syntax.
//
// Patterns match at a segment boundary anywhere in the path, so "blog/**"
// matches both "blog/a.md" and "/repo/docs/blog/a.md", and a pattern
// without "/" matches the base name. A leading "/" anchors at the start.
type glob struct {
	pattern  string
	anchored bool
}

func compileGlob(pattern string) (*glob, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	g := &glob{pattern: pattern, anchored: strings.HasPrefix(pattern, "/")}
	if !g.anchored {
		g.pattern = "**/" + pattern
	}
	if !doublestar.ValidatePattern(g.pattern) {
		return nil, fmt.Errorf("invalid glob syntax in %q", pattern)
	}
	return g, nil
}

func (g *glob) match(path string) bool {
	p := normalizePath(path)
	if !g.anchored {
		p = strings.TrimPrefix(p, "/")
	}
	matched, err := doublestar.Match(g.pattern, p)
	return err == nil && matched
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	return strings.TrimPrefix(p, "./")
}
