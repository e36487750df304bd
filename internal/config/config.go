// Package config resolves the handful of knobs the core components need:
// where the repository root is, how the metadata cache batches writes, how
// large the object store's hot cache is, and how many build workers run.
// The packed object store's tuning is fixed in code and is not resolved
// here. None of this is exposed as a config
// *file* format; it's assembled from flags/env by the CLI and passed down as
// a plain struct.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// RepoDirName is the on-disk directory name holding all repository state.
	RepoDirName = ".mtl"

	// RootEnvVar overrides the repository root when set.
	RootEnvVar = "MTL_ROOT"

	// DefaultCacheFlushInterval is how long the metadata cache writer waits
	// before flushing a non-empty buffer.
	DefaultCacheFlushInterval = time.Second

	// DefaultCacheFlushSize is the buffered-entry count that forces an
	// early flush, ahead of the interval.
	DefaultCacheFlushSize = 256

	// DefaultHotCacheSize is the LRU capacity of the object store's
	// in-memory hot-object cache.
	DefaultHotCacheSize = 1024
)

// Config holds the resolved runtime knobs for one repository.
type Config struct {
	Root               string
	CacheFlushInterval time.Duration
	CacheFlushSize     int
	HotCacheSize       int
	Workers            int
}

// Resolve builds a Config from the working directory and environment,
// applying defaults for anything not explicitly overridden.
func Resolve(root string) (Config, error) {
	if root == "" {
		if env := os.Getenv(RootEnvVar); env != "" {
			root = env
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return Config{}, err
			}
			root = cwd
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Root:               abs,
		CacheFlushInterval: DefaultCacheFlushInterval,
		CacheFlushSize:     DefaultCacheFlushSize,
		HotCacheSize:       DefaultHotCacheSize,
		Workers:            runtime.GOMAXPROCS(0),
	}, nil
}

// RepoDir returns <root>/.mtl.
func (c Config) RepoDir() string {
	return filepath.Join(c.Root, RepoDirName)
}
