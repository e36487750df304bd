// Package build implements the layered parallel Merkle fold: the core
// algorithm that turns a flat target entry set into a single root tree
// object, hashing files in parallel layer-by-layer and folding each layer's
// results upward into its parent directory.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/cache"
	"github.com/imishinist/mtl-go/pkg/mtl/enumerate"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
	"github.com/imishinist/mtl-go/pkg/mtl/repo"
)

// ErrTargetEmpty is returned when a generator produces no entries beyond
// the implicit Root, i.e. there is nothing to build.
var ErrTargetEmpty = fmt.Errorf("build: empty target: %w", errs.ErrInvariant)

// Pipeline runs builds against one repository.
type Pipeline struct {
	Repo    *repo.Repo
	Workers int // 0 or less means no limit on concurrent tasks per layer
}

// dirMap is the concurrency-safe parent_path -> []Object accumulator the
// fold grows layer by layer.
type dirMap struct {
	mu sync.Mutex
	m  map[string][]object.Object
}

func newDirMap() *dirMap {
	return &dirMap{m: make(map[string][]object.Object)}
}

func (d *dirMap) append(parent objpath.RelativePath, obj object.Object) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[parent.String()] = append(d.m[parent.String()], obj)
}

func (d *dirMap) take(parent objpath.RelativePath) ([]object.Object, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[parent.String()]
	return v, ok
}

// Build hashes files in parallel, folds directories upward depth by depth,
// and serializes the root last.
func (p *Pipeline) Build(target enumerate.Target) (object.Object, error) {
	if target.MaxDepth == 0 {
		return object.Object{}, ErrTargetEmpty
	}

	var files []enumerate.Entry
	var dirs []enumerate.Entry
	for _, e := range target.Entries {
		if e.Path.IsRoot() {
			continue
		}
		if e.Kind == object.KindFile {
			files = append(files, e)
		} else {
			dirs = append(dirs, e)
		}
	}

	dm := newDirMap()
	if err := p.hashFilesLayer(files, dm); err != nil {
		return object.Object{}, err
	}

	for depth := target.MaxDepth - 1; depth >= 1; depth-- {
		layer := make([]enumerate.Entry, 0)
		for _, d := range dirs {
			if d.Depth == depth {
				layer = append(layer, d)
			}
		}
		if err := p.foldDirLayer(layer, dm); err != nil {
			return object.Object{}, err
		}
	}

	rootChildren, _ := dm.take(objpath.Root)
	if len(rootChildren) == 0 {
		return object.Object{}, ErrTargetEmpty
	}
	object.SortByBasename(rootChildren)
	rootID, err := p.Repo.WriteTreeContents(rootChildren)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: write root tree: %w", err)
	}
	return object.New(object.KindTree, rootID, ""), nil
}

func (p *Pipeline) hashFilesLayer(files []enumerate.Entry, dm *dirMap) error {
	g := new(errgroup.Group)
	g.SetLimit(p.workers())
	for _, entry := range files {
		entry := entry
		g.Go(func() error {
			obj, err := p.hashFileEntry(entry)
			if err != nil {
				return err
			}
			dm.append(entry.Path.Parent(), obj)
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) foldDirLayer(layer []enumerate.Entry, dm *dirMap) error {
	g := new(errgroup.Group)
	g.SetLimit(p.workers())
	for _, entry := range layer {
		entry := entry
		g.Go(func() error {
			children, ok := dm.take(entry.Path)
			if !ok {
				return nil // empty directory: emit nothing
			}
			object.SortByBasename(children)
			treeID, err := p.Repo.WriteTreeContents(children)
			if err != nil {
				return fmt.Errorf("build: write tree %s: %w", entry.Path, err)
			}
			dm.append(entry.Path.Parent(), object.New(object.KindTree, treeID, entry.Path.FileName()))
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return -1 // errgroup treats negative as unlimited, matching an unbounded work-stealing pool
}

// hashFileEntry stats and (if needed) reads the file named by entry.Path,
// consulting the metadata cache first so an unchanged file is never
// re-read.
func (p *Pipeline) hashFileEntry(entry enumerate.Entry) (object.Object, error) {
	fullPath := filepath.Join(p.Repo.RootDir(), entry.Path.String())
	info, err := os.Stat(fullPath)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: stat %s: %w", entry.Path, err)
	}

	key := entry.Path.String()
	mtimeMicros := uint64(info.ModTime().UnixMicro())
	size := uint64(info.Size())

	if cached, ok, err := p.Repo.Cache.Get(key); err == nil && ok {
		if cached.MtimeMicros == mtimeMicros && cached.Size == size {
			return object.New(object.KindFile, cached.ObjectID, entry.Path.FileName()), nil
		}
	}

	contents, err := os.ReadFile(fullPath)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: read %s: %w", entry.Path, err)
	}
	id, err := p.Repo.Objects.Write(contents)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: write %s: %w", entry.Path, err)
	}
	p.Repo.Cache.Insert(key, cache.Entry{MtimeMicros: mtimeMicros, Size: size, ObjectID: id})
	return object.New(object.KindFile, id, entry.Path.FileName()), nil
}

// Update recomputes the object at a single path by rebuilding from scratch
// and then grafting the updated subtree back into HEAD's ancestor chain,
// avoiding a full re-serialization of unrelated siblings.
func (p *Pipeline) Update(target enumerate.Target, path objpath.RelativePath) (object.Object, error) {
	updated, err := p.Build(target)
	if err != nil {
		return object.Object{}, err
	}
	updatedLeaf, err := p.locateLeaf(updated.ID, path)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: locate updated subtree: %w", err)
	}

	head, err := p.Repo.Refs.ReadHead()
	if err != nil {
		return object.Object{}, fmt.Errorf("build: read HEAD: %w", err)
	}
	routes, err := p.Repo.SearchObjectRoutes(head, path)
	if err != nil {
		return object.Object{}, fmt.Errorf("build: locate current subtree: %w", err)
	}
	routes = append(routes, head)
	if routes[0] == updatedLeaf.ID {
		logging.Component("build").Info("nothing to update", "path", path.String())
		return object.New(object.KindTree, head, ""), nil
	}

	pathList := ancestorChain(path)
	now := object.New(updatedLeaf.Kind, updatedLeaf.ID, pathList[len(pathList)-1].FileName())
	pathList = pathList[:len(pathList)-1]

	for _, objectID := range routes[1:] {
		contents, err := p.Repo.ReadTreeContents(objectID)
		if err != nil {
			return object.Object{}, err
		}
		contents = replaceOrInsert(contents, now)

		var name string
		if len(pathList) > 0 {
			name = pathList[len(pathList)-1].FileName()
			pathList = pathList[:len(pathList)-1]
		}
		newID, err := p.Repo.WriteTreeContents(contents)
		if err != nil {
			return object.Object{}, err
		}
		now = object.New(object.KindTree, newID, name)
	}
	return now, nil
}

// locateLeaf resolves path within the tree rooted at base and returns its
// full entry (kind included), not just its object id, so a graft can tell a
// file leaf from a directory leaf.
func (p *Pipeline) locateLeaf(base hash.Hash, path objpath.RelativePath) (object.Object, error) {
	parentID := base
	if parent := path.Parent(); !parent.IsRoot() {
		var err error
		parentID, err = p.Repo.SearchObject(base, parent)
		if err != nil {
			return object.Object{}, err
		}
	}
	entries, err := p.Repo.ReadTreeContents(parentID)
	if err != nil {
		return object.Object{}, err
	}
	for _, e := range entries {
		if e.Basename == path.FileName() {
			return e, nil
		}
	}
	return object.Object{}, fmt.Errorf("path component %q: %w", path.FileName(), errs.ErrNotFound)
}

func ancestorChain(path objpath.RelativePath) []objpath.RelativePath {
	chain := []objpath.RelativePath{objpath.Root}
	cur := objpath.Root
	for _, c := range path.Components() {
		cur = cur.Join(c)
		chain = append(chain, cur)
	}
	return chain
}

func replaceOrInsert(entries []object.Object, target object.Object) []object.Object {
	for i := range entries {
		if entries[i].Basename == target.Basename {
			entries[i].ID = target.ID
			entries[i].Kind = target.Kind
			return entries
		}
	}
	entries = append(entries, target)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Basename < entries[j].Basename })
	return entries
}
