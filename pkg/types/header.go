package types

import "strings"

// Header represents the leading non-declaration region of a source file:
// the package clause, import statements (including every interior line of a
// parenthesized import group), and leading comment and blank lines seen
// before the first declaration. The header is frozen the moment the first
// declaration line is recognized.
type Header struct {
	Lines []string
}

// Content returns the header lines joined by newlines.
func (h *Header) Content() string {
	return strings.Join(h.Lines, "\n")
}

// LineCount returns the number of header lines.
func (h *Header) LineCount() int {
	return len(h.Lines)
}

// IsEmpty returns true when no lines were accumulated.
func (h *Header) IsEmpty() bool {
	return len(h.Lines) == 0
}

// PackageName extracts the package name from the package clause, or ""
// when the header holds no package statement.
func (h *Header) PackageName() string {
	for _, line := range h.Lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "package ")
		if !ok {
			continue
		}
		name := strings.TrimSpace(rest)
		// Tolerate a trailing comment on the package clause.
		if i := strings.Index(name, "//"); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		if i := strings.Index(name, "/*"); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		return name
	}
	return ""
}

// ImportPaths returns the quoted import paths found in the header, in
// order, with aliases and quotes stripped. Best effort: lines that do not
// look like import specs are skipped.
func (h *Header) ImportPaths() []string {
	var paths []string
	inGroup := false
	for _, line := range h.Lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "import ("):
			inGroup = true
			continue
		case inGroup && strings.HasPrefix(trimmed, ")"):
			inGroup = false
			continue
		case strings.HasPrefix(trimmed, "import "):
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "import "))
		case !inGroup:
			continue
		}
		if p, ok := cutQuoted(trimmed); ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// cutQuoted extracts the first double-quoted string from an import spec.
func cutQuoted(s string) (string, bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return s[start+1 : start+1+end], true
}
