// Package objpath implements RelativePath: a path relative to a repository
// root with a distinguished Root value, matching the platform's raw path
// bytes so that non-UTF-8 basenames round-trip exactly.
package objpath

import (
	"path/filepath"
	"strings"
)

// RelativePath is either the distinguished Root value or a non-empty
// slash-separated relative path. The zero value is Root.
type RelativePath struct {
	// raw holds the path using '/' separators, platform bytes preserved.
	// Empty string means Root.
	raw string
}

// Root is the tree root: the empty relative path.
var Root = RelativePath{}

// New builds a RelativePath from a platform path string, normalizing
// separators to '/' and stripping a leading "./" and trailing "/".
func New(s string) RelativePath {
	s = filepath.ToSlash(s)
	s = strings.TrimPrefix(s, "./")
	s = strings.TrimSuffix(s, "/")
	s = strings.Trim(s, "/")
	if s == "" || s == "." {
		return Root
	}
	return RelativePath{raw: s}
}

// IsRoot reports whether p is the distinguished root value.
func (p RelativePath) IsRoot() bool {
	return p.raw == ""
}

// String renders the path using '/' separators. Root renders as "".
func (p RelativePath) String() string {
	return p.raw
}

// Components splits the path into its path components. Root has none.
func (p RelativePath) Components() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(p.raw, "/")
}

// Depth is the number of path components; Root has depth 0.
func (p RelativePath) Depth() int {
	return len(p.Components())
}

// Parent returns the parent path. Root is its own parent.
func (p RelativePath) Parent() RelativePath {
	if p.IsRoot() {
		return Root
	}
	idx := strings.LastIndexByte(p.raw, '/')
	if idx < 0 {
		return Root
	}
	return RelativePath{raw: p.raw[:idx]}
}

// FileName returns the last path component. Root's file name is "".
func (p RelativePath) FileName() string {
	if p.IsRoot() {
		return ""
	}
	idx := strings.LastIndexByte(p.raw, '/')
	if idx < 0 {
		return p.raw
	}
	return p.raw[idx+1:]
}

// Join appends a single component (the basename) to p.
func (p RelativePath) Join(name string) RelativePath {
	if p.IsRoot() {
		return New(name)
	}
	return RelativePath{raw: p.raw + "/" + name}
}

// HasPrefix reports whether p is equal to or nested under target.
func (p RelativePath) HasPrefix(target RelativePath) bool {
	if target.IsRoot() {
		return true
	}
	if p.raw == target.raw {
		return true
	}
	return strings.HasPrefix(p.raw, target.raw+"/")
}

// Ancestors returns every non-root ancestor of p, shallowest first, not
// including p itself. Root has no ancestors.
func (p RelativePath) Ancestors() []RelativePath {
	comps := p.Components()
	if len(comps) <= 1 {
		return nil
	}
	out := make([]RelativePath, 0, len(comps)-1)
	cur := Root
	for _, c := range comps[:len(comps)-1] {
		cur = cur.Join(c)
		out = append(out, cur)
	}
	return out
}

// Compare orders Root before all non-root paths, and orders non-root paths
// lexicographically by their slash-joined form.
func (p RelativePath) Compare(other RelativePath) int {
	if p.IsRoot() && other.IsRoot() {
		return 0
	}
	if p.IsRoot() {
		return -1
	}
	if other.IsRoot() {
		return 1
	}
	return strings.Compare(p.raw, other.raw)
}

// Equal reports value equality.
func (p RelativePath) Equal(other RelativePath) bool {
	return p.raw == other.raw
}
