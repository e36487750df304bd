// Package refstore implements named references (HEAD and refs/<name>) and
// the compact ObjectExpr grammar used to resolve a reference plus an
// optional subpath down into a tree.
package refstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

// Store manages HEAD and the refs/ directory under a repository root.
type Store struct {
	repoDir string
}

// Open returns a reference store rooted at repoDir (<root>/.mtl), ensuring
// the refs/ directory exists.
func Open(repoDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(repoDir, "refs"), 0o755); err != nil {
		return nil, fmt.Errorf("refstore: create refs dir: %w", err)
	}
	return &Store{repoDir: repoDir}, nil
}

func (s *Store) headFile() string {
	return filepath.Join(s.repoDir, "HEAD")
}

func (s *Store) refFile(name string) string {
	return filepath.Join(s.repoDir, "refs", name)
}

// ReadHead reads the current HEAD id.
func (s *Store) ReadHead() (hash.Hash, error) {
	return readIDFile(s.headFile())
}

// WriteHead overwrites HEAD with id.
func (s *Store) WriteHead(id hash.Hash) error {
	return writeIDFile(s.headFile(), id)
}

// Save writes (or overwrites) a named reference. "HEAD" is reserved and
// handled through WriteHead instead.
func (s *Store) Save(name string, id hash.Hash) error {
	if name == "HEAD" {
		return s.WriteHead(id)
	}
	return writeIDFile(s.refFile(name), id)
}

// Delete removes a named reference.
func (s *Store) Delete(name string) error {
	if name == "HEAD" {
		return fmt.Errorf("refstore: cannot delete HEAD")
	}
	err := os.Remove(s.refFile(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("refstore: ref %q: %w", name, errs.ErrNotFound)
		}
		return fmt.Errorf("refstore: delete ref %q: %w", name, err)
	}
	return nil
}

// Deref resolves a reference name (including "HEAD") to an object id.
func (s *Store) Deref(name string) (hash.Hash, error) {
	if name == "HEAD" {
		return s.ReadHead()
	}
	id, err := readIDFile(s.refFile(name))
	if err != nil {
		return hash.Hash(0), fmt.Errorf("refstore: ref %q: %w", name, err)
	}
	return id, nil
}

// ListRefs returns all non-HEAD reference names in alphabetical order.
func (s *Store) ListRefs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.repoDir, "refs"))
	if err != nil {
		return nil, fmt.Errorf("refstore: list refs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func readIDFile(path string) (hash.Hash, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hash.Hash(0), errs.ErrNotFound
		}
		return hash.Hash(0), fmt.Errorf("refstore: read %s: %w", path, err)
	}
	return hash.FromHex(strings.TrimSpace(string(b)))
}

func writeIDFile(path string, id hash.Hash) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("refstore: mkdir: %w", err)
	}
	return os.WriteFile(path, []byte(id.String()+"\n"), 0o644)
}

// RefOrID is either a plain object id or a named reference, as parsed from
// the left-hand side of an ObjectExpr.
type RefOrID struct {
	IsID      bool
	ID        hash.Hash
	Reference string
}

// Expr is a parsed "<ref-or-id>[:<subpath>]" expression.
type Expr struct {
	Base    RefOrID
	Subpath string // "" means no subpath; "<id>:" and "<id>" are equivalent
	HasPath bool
}

// ParseExpr parses the compact object-expression grammar.
func ParseExpr(s string) (Expr, error) {
	left, right, hasColon := strings.Cut(s, ":")

	var base RefOrID
	if id, err := hash.FromHex(left); err == nil {
		base = RefOrID{IsID: true, ID: id}
	} else {
		if left == "" {
			return Expr{}, fmt.Errorf("refstore: empty ref-or-id: %w", errs.ErrParse)
		}
		base = RefOrID{Reference: left}
	}

	if !hasColon || right == "" {
		return Expr{Base: base, HasPath: false}, nil
	}
	return Expr{Base: base, Subpath: right, HasPath: true}, nil
}
