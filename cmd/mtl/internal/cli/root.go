// Package cli wires the cobra command tree for the mtl CLI: a root
// command carrying global logging/repository flags, and one subcommand
// per operation the core packages expose.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/internal/logging"
)

var (
	logLevel  string
	logFormat string
	repoRoot  string

	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mtl",
	Short: "Content-addressed Merkle hashing for directory trees",
	Long: `mtl computes a stable, content-addressed identifier for a directory tree
and manages the resulting objects in a local repository under .mtl/.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logLevel, logFormat, os.Stderr)
		return nil
	},
	SilenceUsage: true,
}

// SetVersion records build-time version metadata for the --version flag.
func SetVersion(version, commit, date string) {
	appVersion, appCommit, appDate = version, commit, date
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("mtl %s (%s) %s\n", appVersion, appCommit, appDate))
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&repoRoot, "root", "", "repository root (default: $MTL_ROOT or cwd)")
}
