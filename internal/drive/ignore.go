package drive

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreFileName is the per-root file listing extra ignore patterns.
const IgnoreFileName = ".dvcignore"

// defaultIgnorePatterns are always applied regardless of config or .dvcignore.
var defaultIgnorePatterns = []string{IgnoreFileName}

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against relative path; false = match against each segment
	negate    bool
}

// IgnoreMatcher checks drive ids against a set of ignore patterns.
// Patterns without '/' match any single path segment, so ignoring a folder
// name also hides everything inside it. Patterns with '/' match the full
// id. A leading '!' re-includes what an earlier pattern ignored; the last
// matching pattern wins.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings plus
// the defaults. Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasPrefix(raw, "!") {
			p.negate = true
			raw = raw[1:]
		}
		raw = strings.TrimSuffix(raw, "/")
		if raw == "" {
			continue
		}
		p.pattern = raw
		p.matchPath = strings.Contains(raw, "/")
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the slash-separated id relative to the drive root
// should be ignored.
func (m *IgnoreMatcher) Match(id string) bool {
	if id == "" || id == "." {
		return false
	}
	segments := strings.Split(id, "/")

	ignored := false
	for _, p := range m.patterns {
		if p.matches(id, segments) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p ignorePattern) matches(id string, segments []string) bool {
	if p.matchPath {
		// A path pattern also covers everything below the path it names.
		for i := len(segments); i > 0; i-- {
			if ok, err := path.Match(p.pattern, strings.Join(segments[:i], "/")); err == nil && ok {
				return true
			}
		}
		return false
	}
	for _, seg := range segments {
		// Bad patterns never match.
		if ok, err := path.Match(p.pattern, seg); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads a .dvcignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
