// Package diff implements structural comparison of two trees: an
// LCS-based alignment of each level's entries, with same-basename
// mismatches collapsed into a single Replace op that recurses one level
// deeper when both sides are trees.
package diff

import (
	"fmt"

	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
	"github.com/imishinist/mtl-go/pkg/mtl/repo"
)

// Op tags one emitted change.
type Op int

const (
	// Equal means the entry is identical (same kind, id, and basename) on
	// both sides; carried in the output purely for side-by-side display.
	Equal Op = iota
	Delete
	Insert
	Replace
)

func (o Op) String() string {
	switch o {
	case Equal:
		return "equal"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is one emitted diff line: the full path of the entry relative to
// the two roots being compared, and the A-side/B-side object (nil when the
// entry doesn't exist on that side).
type Change struct {
	Op   Op
	Path objpath.RelativePath
	A    *object.Object
	B    *object.Object
}

// Options bounds the recursion.
type Options struct {
	// MaxDepth limits recursion below the diff root; 0 means unlimited.
	MaxDepth int
}

// Diff compares two tree ids and returns a flat, basename-ordered list of
// changes. Identical ids short-circuit to an empty result.
func Diff(r *repo.Repo, a, b hash.Hash, opts Options) ([]Change, error) {
	var out []Change
	if err := diffTrees(r, a, b, objpath.Root, 0, opts.MaxDepth, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diffTrees(r *repo.Repo, a, b hash.Hash, base objpath.RelativePath, depth, maxDepth int, out *[]Change) error {
	if a == b {
		return nil
	}
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}

	aEntries, err := r.ReadTreeContents(a)
	if err != nil {
		return fmt.Errorf("diff: read tree %s: %w", a, err)
	}
	bEntries, err := r.ReadTreeContents(b)
	if err != nil {
		return fmt.Errorf("diff: read tree %s: %w", b, err)
	}
	object.SortByBasename(aEntries)
	object.SortByBasename(bEntries)

	for _, change := range alignEntries(aEntries, bEntries) {
		basename := change.basename()
		path := base.Join(basename)
		change.Path = path
		*out = append(*out, change)

		if change.Op == Replace && change.A.Kind == object.KindTree && change.B.Kind == object.KindTree {
			if err := diffTrees(r, change.A.ID, change.B.ID, path, depth+1, maxDepth, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c Change) basename() string {
	if c.A != nil {
		return c.A.Basename
	}
	if c.B != nil {
		return c.B.Basename
	}
	return ""
}

// lcsOp is an intermediate alignment op before Delete/Insert pairs sharing
// a basename are merged into Replace.
type lcsOp struct {
	kind Op // Equal, Delete, or Insert only at this stage
	a    *object.Object
	b    *object.Object
}

// alignEntries runs a classic LCS alignment over two basename-sorted entry
// slices (compared by full Object equality), then merges adjacent
// Delete+Insert pairs that share a basename into Replace.
func alignEntries(a, b []object.Object) []Change {
	ops := lcsAlign(a, b)
	return mergeReplacements(ops)
}

// lcsAlign computes the standard dynamic-programming longest-common-
// subsequence table and backtracks it into an ordered Equal/Delete/Insert
// op sequence. Ties in the backtrack are broken by basename (the smaller
// basename is emitted first, Delete before Insert on equal basenames), so
// the op sequence stays in basename order.
func lcsAlign(a, b []object.Object) []lcsOp {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	ops := make([]lcsOp, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ai, bj := a[i], b[j]
			ops = append(ops, lcsOp{kind: Equal, a: &ai, b: &bj})
			i++
			j++
		case dp[i+1][j] > dp[i][j+1] || (dp[i+1][j] == dp[i][j+1] && a[i].Basename <= b[j].Basename):
			ai := a[i]
			ops = append(ops, lcsOp{kind: Delete, a: &ai})
			i++
		default:
			bj := b[j]
			ops = append(ops, lcsOp{kind: Insert, b: &bj})
			j++
		}
	}
	for ; i < n; i++ {
		ai := a[i]
		ops = append(ops, lcsOp{kind: Delete, a: &ai})
	}
	for ; j < m; j++ {
		bj := b[j]
		ops = append(ops, lcsOp{kind: Insert, b: &bj})
	}
	return ops
}

// mergeReplacements walks the LCS op sequence and folds a Delete/Insert
// pair that share a basename into one Replace. Because both entry lists
// are sorted ascending by basename before alignment and lcsAlign breaks
// backtrack ties by basename, a mismatched entry always backtracks to an
// adjacent Delete-then-Insert pair in the op sequence, so a single forward
// pass with one-op lookahead is sufficient.
func mergeReplacements(ops []lcsOp) []Change {
	out := make([]Change, 0, len(ops))
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.kind {
		case Equal:
			out = append(out, Change{Op: Equal, A: op.a, B: op.b})
		case Delete:
			if i+1 < len(ops) && ops[i+1].kind == Insert && ops[i+1].b.Basename == op.a.Basename {
				out = append(out, Change{Op: Replace, A: op.a, B: ops[i+1].b})
				i++
				continue
			}
			out = append(out, Change{Op: Delete, A: op.a})
		case Insert:
			if i+1 < len(ops) && ops[i+1].kind == Delete && ops[i+1].a.Basename == op.b.Basename {
				out = append(out, Change{Op: Replace, A: ops[i+1].a, B: op.b})
				i++
				continue
			}
			out = append(out, Change{Op: Insert, B: op.b})
		}
	}
	return out
}
