package cli

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const mtlStateDirName = ".mtl"

// addWatchRecursive adds fsnotify watches to dir and every subdirectory
// beneath it, skipping the repository state directory so object writes
// performed by the rebuild itself don't retrigger the watch loop.
func addWatchRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == mtlStateDirName {
			return filepath.SkipDir
		}
		if d.Name() != "." && len(d.Name()) > 0 && d.Name()[0] == '.' && path != dir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
