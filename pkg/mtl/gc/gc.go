// Package gc implements mark-and-sweep garbage collection over the object
// graph reachable from HEAD and every named reference.
package gc

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/repo"
)

// Stats reports what a run did (or, in dry-run mode, would do).
type Stats struct {
	Reachable int
	Swept     int
	DryRun    bool
}

// Run performs one mark-and-sweep pass. In dry-run mode it computes and
// reports the same sweep set without deleting anything.
func Run(r *repo.Repo, dryRun bool) (Stats, error) {
	marked, err := mark(r)
	if err != nil {
		return Stats{}, err
	}

	ids, err := r.Objects.ListIDs()
	if err != nil {
		return Stats{}, fmt.Errorf("gc: list ids: %w", err)
	}

	log := logging.Component("gc")
	swept := 0
	for _, id := range ids {
		if marked.Contains(id.AsU64()) {
			continue
		}
		if !r.Objects.LooseExists(id) {
			// Only unreachable packed objects are left alone; pack rebuild
			// is the only way to shrink the packed store (see the pack
			// package). Nothing to delete here.
			continue
		}
		if dryRun {
			swept++
			continue
		}
		if err := r.Objects.DeleteLoose(id); err != nil {
			log.Warn("failed to delete unreachable loose object", "id", id, "err", err)
			continue
		}
		swept++
	}

	return Stats{
		Reachable: int(marked.GetCardinality()),
		Swept:     swept,
		DryRun:    dryRun,
	}, nil
}

// mark seeds the reachable set from HEAD and every named reference, then
// recursively marks every tree and file id reachable by containment. Both
// tree AND file ids are recorded in the bitmap (not only trees), so the
// sweep step can reason about file reachability without re-reading any
// tree object a second time.
func mark(r *repo.Repo) (*roaring64.Bitmap, error) {
	marked := roaring64.New()

	var seeds []hash.Hash
	if head, err := r.Refs.ReadHead(); err == nil {
		seeds = append(seeds, head)
	} else if err != errs.ErrNotFound {
		return nil, fmt.Errorf("gc: read HEAD: %w", err)
	}

	names, err := r.Refs.ListRefs()
	if err != nil {
		return nil, fmt.Errorf("gc: list refs: %w", err)
	}
	for _, name := range names {
		id, err := r.Refs.Deref(name)
		if err != nil {
			return nil, fmt.Errorf("gc: deref ref %q: %w", name, err)
		}
		seeds = append(seeds, id)
	}

	for _, seed := range seeds {
		if err := markTree(r, seed, marked); err != nil {
			return nil, err
		}
	}
	return marked, nil
}

func markTree(r *repo.Repo, id hash.Hash, marked *roaring64.Bitmap) error {
	if marked.Contains(id.AsU64()) {
		return nil
	}
	marked.Add(id.AsU64())

	entries, err := r.ReadTreeContents(id)
	if err != nil {
		return fmt.Errorf("gc: read tree %s: %w", id, err)
	}
	for _, e := range entries {
		if e.Kind == object.KindTree {
			if err := markTree(r, e.ID, marked); err != nil {
				return err
			}
		} else {
			marked.Add(e.ID.AsU64())
		}
	}
	return nil
}
