// Package object defines the in-memory Object record and the tree-object
// text serialization: one line per child, "kind\tobject_id\tbasename\n",
// strictly ascending by basename.
package object

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

// Kind distinguishes a tree entry from a file entry.
type Kind int

const (
	KindFile Kind = iota
	KindTree
)

// String renders the kind as the literal wire token ("file" or "tree").
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindTree:
		return "tree"
	default:
		return "unknown"
	}
}

// ParseKind parses the wire token back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "file":
		return KindFile, nil
	case "tree":
		return KindTree, nil
	case "":
		return 0, fmt.Errorf("object: empty kind token: %w", errs.ErrParse)
	default:
		return 0, fmt.Errorf("object: unknown kind %q: %w", s, errs.ErrParse)
	}
}

// ID is an opaque alias of hash.Hash, naming an object's content.
type ID = hash.Hash

// Object is a single entry of a tree object: one child, named by a single
// path component (its basename), with its kind and content id.
type Object struct {
	Kind     Kind
	ID       ID
	Basename string
}

// New builds an Object, requiring a single path component as basename.
func New(kind Kind, id ID, basename string) Object {
	return Object{Kind: kind, ID: id, Basename: basename}
}

// Size is the exact serialized byte length of this entry: tag(4) + tab(1) +
// hex(16) + tab(1) + basename + newline(1) == 23 + len(basename bytes).
func (o Object) Size() int {
	return 23 + len(o.Basename)
}

// String renders the bit-exact line form, without the trailing newline.
func (o Object) String() string {
	return fmt.Sprintf("%s\t%s\t%s", o.Kind, o.ID, o.Basename)
}

// Less orders two Objects by basename, matching the required ascending sort.
func (o Object) Less(other Object) bool {
	return o.Basename < other.Basename
}

// SortByBasename sorts entries in place into strictly ascending order.
func SortByBasename(entries []Object) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Basename < entries[j].Basename
	})
}

// Serialize renders a full tree payload: entries sorted ascending by
// basename, one "kind\tid\tbasename\n" line each. The caller-visible
// invariant is that an empty entries slice is never serialized — tree
// objects with zero children simply don't exist (see Build).
func Serialize(entries []Object) []byte {
	sorted := make([]Object, len(entries))
	copy(sorted, entries)
	SortByBasename(sorted)

	var b strings.Builder
	for _, e := range sorted {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Parse splits a tree payload back into its entries, validating that each
// line has exactly three tab-separated fields and a well-formed id.
func Parse(payload []byte) ([]Object, error) {
	text := string(payload)
	lines := strings.Split(text, "\n")
	entries := make([]Object, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("object: malformed tree line %q: %w", line, errs.ErrParse)
		}
		kind, err := ParseKind(fields[0])
		if err != nil {
			return nil, err
		}
		id, err := hash.FromHex(fields[1])
		if err != nil {
			return nil, fmt.Errorf("object: malformed id in line %q: %w", line, err)
		}
		entries = append(entries, Object{Kind: kind, ID: id, Basename: fields[2]})
	}
	return entries, nil
}
