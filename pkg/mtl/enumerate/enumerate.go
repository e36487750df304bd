// Package enumerate implements the target generators that turn either a
// filesystem walk or a newline-delimited path list into the flat entry set
// the build pipeline folds into a tree.
package enumerate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/filter"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
)

// Entry is one filesystem path discovered by a generator, tagged with its
// kind and depth (depth of Root is 0).
type Entry struct {
	Kind  object.Kind
	Path  objpath.RelativePath
	Depth int
}

// Target is the full flat entry set a build folds over.
type Target struct {
	MaxDepth int
	Entries  []Entry
	NumFiles uint64
	NumDirs  uint64
}

func (t *Target) push(e Entry) {
	if e.Depth > t.MaxDepth {
		t.MaxDepth = e.Depth
	}
	switch e.Kind {
	case object.KindFile:
		t.NumFiles++
	case object.KindTree:
		t.NumDirs++
	}
	t.Entries = append(t.Entries, e)
}

// Generator produces the flat entry set a build walk starts from.
type Generator interface {
	Generate() (Target, error)
}

// Scan walks a directory tree on disk, rejecting entries the given filter
// excludes.
type Scan struct {
	RootDir string
	Filter  filter.Filter
	Hidden  bool // when false, dotfiles/dotdirs are skipped (the default)
}

// Generate implements Generator.
func (s Scan) Generate() (Target, error) {
	var target Target
	target.push(Entry{Kind: object.KindTree, Path: objpath.Root, Depth: 0})

	log := logging.Component("enumerate")
	err := filepath.WalkDir(s.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == s.RootDir {
				return fmt.Errorf("enumerate: walk %s: %w", path, err)
			}
			log.Warn("skipping unreadable entry", "path", path, "err", err)
			return nil
		}
		if path == s.RootDir {
			return nil
		}
		rel, relErr := filepath.Rel(s.RootDir, path)
		if relErr != nil {
			return fmt.Errorf("enumerate: relativize %s: %w", path, relErr)
		}
		relPath := objpath.New(rel)

		if !s.Hidden && strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if s.Filter != nil && !s.Filter.Matches(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			target.push(Entry{Kind: object.KindTree, Path: relPath, Depth: relPath.Depth()})
			return nil
		}
		if d.Type().IsRegular() {
			target.push(Entry{Kind: object.KindFile, Path: relPath, Depth: relPath.Depth()})
			return nil
		}
		// Symlinks, sockets, devices: not representable as a tree/file entry.
		log.Warn("skipping unsupported file type", "path", rel)
		return nil
	})
	if err != nil {
		return Target{}, err
	}
	return target, nil
}

// FileList builds a target from a newline-delimited list of paths, each
// optionally suffixed with '/' to mark a directory.
type FileList struct {
	Reader io.Reader
	Filter filter.Filter
}

// Generate implements Generator.
func (fl FileList) Generate() (Target, error) {
	var target Target
	scanner := bufio.NewScanner(fl.Reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		isDir := strings.HasSuffix(line, "/")
		line = strings.TrimPrefix(line, "./")
		line = strings.TrimSuffix(line, "/")

		if filepath.IsAbs(line) {
			return Target{}, fmt.Errorf("enumerate: absolute path %q not supported: %w", line, errs.ErrInvariant)
		}

		relPath := objpath.New(line)
		if fl.Filter != nil && !fl.Filter.Matches(relPath) {
			continue
		}

		kind := object.KindFile
		if isDir {
			kind = object.KindTree
		}
		target.push(Entry{Kind: kind, Path: relPath, Depth: relPath.Depth()})
	}
	if err := scanner.Err(); err != nil {
		return Target{}, fmt.Errorf("enumerate: scan file list: %w", err)
	}
	target.push(Entry{Kind: object.KindTree, Path: objpath.Root, Depth: 0})
	return target, nil
}
