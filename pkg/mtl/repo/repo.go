// Package repo ties the object store, reference store, and metadata cache
// together behind one dependency container, and implements the tree
// read/write/search operations every higher-level command is built from.
package repo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/imishinist/mtl-go/internal/config"
	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/cache"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
	"github.com/imishinist/mtl-go/pkg/mtl/objstore"
	"github.com/imishinist/mtl-go/pkg/mtl/refstore"
)

// StateDirName is the name of the repository's internal state directory,
// created at the root of every tree this tool manages.
const StateDirName = ".mtl"

// Repo is the dependency container shared by build, gc, pack, and diff: the
// root directory being tracked, the state directory beneath it, and handles
// onto the object store, reference store, and metadata cache.
type Repo struct {
	rootDir  string // directory being hashed
	stateDir string // rootDir/.mtl

	Objects *objstore.Store
	Refs    *refstore.Store
	Cache   *cache.Cache

	log *slog.Logger
}

// Open opens (initializing on first use) the repository rooted at rootDir.
func Open(rootDir string, cfg config.Config) (*Repo, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("repo: resolve root: %w", err)
	}
	stateDir := filepath.Join(absRoot, StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("repo: create state dir: %w", err)
	}

	objects, err := objstore.Open(stateDir, objstore.WithHotCacheSize(cfg.HotCacheSize))
	if err != nil {
		return nil, fmt.Errorf("repo: open object store: %w", err)
	}
	refs, err := refstore.Open(stateDir)
	if err != nil {
		objects.Close()
		return nil, fmt.Errorf("repo: open ref store: %w", err)
	}
	metaCache, err := cache.Open(stateDir, cache.Options{
		FlushInterval: cfg.CacheFlushInterval,
		FlushSize:     cfg.CacheFlushSize,
	})
	if err != nil {
		objects.Close()
		return nil, fmt.Errorf("repo: open metadata cache: %w", err)
	}

	return &Repo{
		rootDir:  absRoot,
		stateDir: stateDir,
		Objects:  objects,
		Refs:     refs,
		Cache:    metaCache,
		log:      logging.Component("repo"),
	}, nil
}

// Close releases all underlying store handles.
func (r *Repo) Close() error {
	var firstErr error
	if err := r.Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := r.Objects.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RootDir returns the absolute path of the tracked directory.
func (r *Repo) RootDir() string {
	return r.rootDir
}

// StateDir returns the absolute path of the internal state directory.
func (r *Repo) StateDir() string {
	return r.stateDir
}

// WriteTreeContents serializes entries into a tree object and stores it,
// returning the new tree's id.
func (r *Repo) WriteTreeContents(entries []object.Object) (hash.Hash, error) {
	payload := object.Serialize(entries)
	id, err := r.Objects.Write(payload)
	if err != nil {
		return hash.Hash(0), fmt.Errorf("repo: write tree: %w", err)
	}
	return id, nil
}

// ReadTreeContents reads and parses the tree object named by id.
func (r *Repo) ReadTreeContents(id hash.Hash) ([]object.Object, error) {
	payload, err := r.Objects.Read(id)
	if err != nil {
		return nil, fmt.Errorf("repo: read tree %s: %w", id, err)
	}
	entries, err := object.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("repo: parse tree %s: %w", id, err)
	}
	return entries, nil
}

// DerefExpr resolves an Expr's base (a reference name or a literal id) down
// to an object id, then descends any subpath down from there.
func (r *Repo) DerefExpr(expr refstore.Expr) (hash.Hash, error) {
	base, err := r.derefBase(expr.Base)
	if err != nil {
		return hash.Hash(0), err
	}
	if !expr.HasPath {
		return base, nil
	}
	return r.SearchObject(base, objpath.New(expr.Subpath))
}

func (r *Repo) derefBase(base refstore.RefOrID) (hash.Hash, error) {
	if base.IsID {
		return base.ID, nil
	}
	return r.Refs.Deref(base.Reference)
}

// SearchObject walks down from a tree id through path's components,
// returning the id of the object found at path.
func (r *Repo) SearchObject(base hash.Hash, path objpath.RelativePath) (hash.Hash, error) {
	routes, err := r.SearchObjectRoutes(base, path)
	if err != nil {
		return hash.Hash(0), err
	}
	if len(routes) == 0 {
		return base, nil
	}
	return routes[0], nil
}

// SearchObjectRoutes returns the chain of object ids visited while
// descending from base through path, nearest-first (routes[0] is the final
// target; the last element is the immediate child of base).
func (r *Repo) SearchObjectRoutes(base hash.Hash, path objpath.RelativePath) ([]hash.Hash, error) {
	comps := path.Components()
	return r.searchRoutes(base, comps)
}

func (r *Repo) searchRoutes(current hash.Hash, comps []string) ([]hash.Hash, error) {
	if len(comps) == 0 {
		return nil, nil
	}
	entries, err := r.ReadTreeContents(current)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Basename != comps[0] {
			continue
		}
		rest, err := r.searchRoutes(e.ID, comps[1:])
		if err != nil {
			return nil, err
		}
		return append(rest, e.ID), nil
	}
	return nil, fmt.Errorf("repo: path component %q: %w", comps[0], errs.ErrNotFound)
}
