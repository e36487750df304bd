package cli

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Standalone utilities that don't require an open repository",
}

var toolHashCmd = &cobra.Command{
	Use:   "hash [path...]",
	Short: "Hash stdin or a list of file paths, printing \"<hash> <path>\"",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			contents, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("tool hash: read stdin: %w", err)
			}
			fmt.Fprintf(out, "%s -\n", hash.FromContents(contents))
			return nil
		}
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("tool hash: %w", err)
			}
			if info.IsDir() {
				fmt.Fprintf(out, "%s %s\n", strings.Repeat(" ", 16), path)
				continue
			}
			contents, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("tool hash: %w", err)
			}
			fmt.Fprintf(out, "%s %s\n", hash.FromContents(contents), path)
		}
		return nil
	},
}

var (
	toolGenNumKB       int
	toolGenNumKBStddev int
	toolGenPrefixBytes string
)

var toolGenerateCmd = &cobra.Command{
	Use:   "generate <dir> <nfile>",
	Short: "Generate random fixture files under dir, bucketed by hash prefix",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		nfile, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("tool generate: nfile: %w", err)
		}
		prefixes, err := parsePrefixBytes(toolGenPrefixBytes)
		if err != nil {
			return err
		}

		mean := float64(toolGenNumKB * 1024)
		stddev := float64(toolGenNumKBStddev * 1024)
		for i := 0; i < nfile; i++ {
			size := int(mean + stddev*rand.NormFloat64())
			if size < 0 {
				size = 0
			}
			contents := make([]byte, size)
			if _, err := rand.Read(contents); err != nil {
				return fmt.Errorf("tool generate: %w", err)
			}

			h := hash.FromContents(contents)
			prefix, rest := splitByPrefixes(h.String(), prefixes)
			outDir := filepath.Join(dir, prefix)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("tool generate: %w", err)
			}
			if err := os.WriteFile(filepath.Join(outDir, rest), contents, 0o644); err != nil {
				return fmt.Errorf("tool generate: %w", err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "generated %d files under %s\n", nfile, dir)
		return nil
	},
}

func parsePrefixBytes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("tool generate: prefix-bytes: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// splitByPrefixes carves successive hex-character counts off the front of
// the hash's string form into nested directory components, returning the
// remaining suffix as the final file name.
func splitByPrefixes(hexHash string, prefixes []int) (string, string) {
	var segs []string
	rest := hexHash
	for _, n := range prefixes {
		if n <= 0 || n >= len(rest) {
			break
		}
		segs = append(segs, rest[:n])
		rest = rest[n:]
	}
	return filepath.Join(segs...), rest
}

func init() {
	toolGenerateCmd.Flags().IntVar(&toolGenNumKB, "num-kilobytes", 20, "mean file size in KiB")
	toolGenerateCmd.Flags().IntVar(&toolGenNumKBStddev, "num-kilobytes-stddev", 2, "file size standard deviation in KiB")
	toolGenerateCmd.Flags().StringVarP(&toolGenPrefixBytes, "prefix-bytes", "p", "2", "comma-separated directory fan-out prefix lengths")

	toolCmd.AddCommand(toolHashCmd, toolGenerateCmd)
	rootCmd.AddCommand(toolCmd)
}
