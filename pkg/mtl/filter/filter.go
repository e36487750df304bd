// Package filter implements the path-acceptance policies that decide which
// files and directories a build walk descends into: reject internal
// bookkeeping directories, restrict a build to a single subtree, or apply
// gitignore-style exclusion patterns.
package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
)

// Filter decides whether a relative path participates in a build.
type Filter interface {
	Matches(path objpath.RelativePath) bool
}

// reservedDirs are never descended into regardless of filter, matching the
// original tool's own hard-coded exclusion of its internal state directory
// and common VCS metadata.
var reservedDirs = []string{".mtl", ".git"}

// MatchAll accepts every path except the repository's own internal
// directory and VCS metadata.
type MatchAll struct{}

// Matches implements Filter.
func (MatchAll) Matches(path objpath.RelativePath) bool {
	if path.IsRoot() {
		return true
	}
	name := path.Components()[0]
	for _, r := range reservedDirs {
		if name == r {
			return false
		}
	}
	return true
}

// Path restricts a build to one target subtree: the target itself, every
// path nested under it, and every ancestor of the target (so the walk can
// still descend down to it).
type Path struct {
	Target objpath.RelativePath
}

// NewPath builds a Path filter for target.
func NewPath(target objpath.RelativePath) Path {
	return Path{Target: target}
}

// Matches implements Filter.
func (f Path) Matches(path objpath.RelativePath) bool {
	if f.Target.IsRoot() {
		return true
	}
	if path.HasPrefix(f.Target) {
		return true
	}
	// Allow ancestors of the target so a recursive walk can still reach it.
	return f.Target.HasPrefix(path)
}

// Ignore applies gitignore-style glob patterns, using '**' double-star
// matching against the slash-joined relative path. Patterns are evaluated
// in order; a later pattern overrides an earlier one, matching git's own
// last-match-wins semantics. A leading '!' negates a pattern (re-includes a
// path excluded by an earlier rule).
type Ignore struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	glob    string
	negate  bool
	dirOnly bool
}

// NewIgnore compiles a list of gitignore-style pattern lines.
func NewIgnore(lines []string) (*Ignore, error) {
	ig := &Ignore{}
	for _, line := range lines {
		if err := ig.addLine(line); err != nil {
			return nil, err
		}
	}
	return ig, nil
}

// LoadIgnoreFile reads patterns from a gitignore-format file, one pattern
// per line, blank lines and '#' comments skipped.
func LoadIgnoreFile(path string) (*Ignore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filter: open ignore file: %w", err)
	}
	defer f.Close()

	ig := &Ignore{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ig.addLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("filter: read ignore file: %w", err)
	}
	return ig, nil
}

func (ig *Ignore) addLine(line string) error {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	negate := strings.HasPrefix(line, "!")
	if negate {
		line = line[1:]
	}
	dirOnly := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")
	line = strings.TrimPrefix(line, "/")

	if _, err := doublestar.Match(line, "probe"); err != nil {
		return fmt.Errorf("filter: bad ignore pattern %q: %w", line, err)
	}
	ig.patterns = append(ig.patterns, ignorePattern{glob: line, negate: negate, dirOnly: dirOnly})
	return nil
}

// Matches implements Filter: a path is accepted unless the last matching
// pattern is a non-negated exclusion.
func (ig *Ignore) Matches(path objpath.RelativePath) bool {
	if path.IsRoot() {
		return true
	}
	s := path.String()
	excluded := false
	for _, p := range ig.patterns {
		if matchIgnorePattern(p, s) {
			excluded = !p.negate
		}
	}
	return !excluded
}

func matchIgnorePattern(p ignorePattern, s string) bool {
	candidates := []string{p.glob, p.glob + "/**"}
	if !strings.Contains(p.glob, "**") {
		candidates = append(candidates, "**/"+p.glob, "**/"+p.glob+"/**")
	}
	for _, c := range candidates {
		if ok, _ := doublestar.Match(c, s); ok {
			return true
		}
	}
	return false
}
