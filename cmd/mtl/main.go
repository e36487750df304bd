// Command mtl computes a content-addressed Merkle hash of a directory
// tree and manages the resulting object store: build, inspect, diff,
// garbage-collect, and pack.
package main

import (
	"github.com/imishinist/mtl-go/cmd/mtl/internal/cli"
)

// Version metadata. Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	cli.Execute()
}
