package cli

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/internal/logging"
	"github.com/imishinist/mtl-go/pkg/mtl/build"
	"github.com/imishinist/mtl-go/pkg/mtl/enumerate"
	"github.com/imishinist/mtl-go/pkg/mtl/filter"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Build and inspect the tree rooted at the repository root",
}

var (
	localBuildSaveHead bool
	localScanHidden    bool
)

var localBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Hash the repository root and optionally update HEAD",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := openRepoConfig()
		if err != nil {
			return err
		}
		defer r.Close()

		target, err := enumerate.Scan{RootDir: r.RootDir(), Filter: filter.MatchAll{}, Hidden: localScanHidden}.Generate()
		if err != nil {
			return err
		}
		pipeline := &build.Pipeline{Repo: r, Workers: cfg.Workers}
		obj, err := pipeline.Build(target)
		if err != nil {
			return err
		}

		if localBuildSaveHead {
			if err := r.Refs.WriteHead(obj.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", obj.ID)
		return nil
	},
}

var localListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every path the scan target generator would visit",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		target, err := enumerate.Scan{RootDir: r.RootDir(), Filter: filter.MatchAll{}, Hidden: localScanHidden}.Generate()
		if err != nil {
			return err
		}
		for _, e := range target.Entries {
			if e.Path.IsRoot() {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Kind, e.Path)
		}
		return nil
	},
}

var localUpdateCmd = &cobra.Command{
	Use:   "update <path>",
	Short: "Recompute one subtree and graft it into HEAD without a full rebuild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := openRepoConfig()
		if err != nil {
			return err
		}
		defer r.Close()

		path := objpath.New(args[0])
		target, err := enumerate.Scan{RootDir: r.RootDir(), Filter: filter.NewPath(path), Hidden: localScanHidden}.Generate()
		if err != nil {
			return err
		}
		pipeline := &build.Pipeline{Repo: r, Workers: cfg.Workers}
		obj, err := pipeline.Update(target, path)
		if err != nil {
			return err
		}
		if err := r.Refs.WriteHead(obj.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", obj.ID)
		return nil
	},
}

var localWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and update HEAD whenever the tree changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := openRepoConfig()
		if err != nil {
			return err
		}
		defer r.Close()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("local watch: create watcher: %w", err)
		}
		defer watcher.Close()
		if err := addWatchRecursive(watcher, r.RootDir()); err != nil {
			return err
		}

		log := logging.Component("cli.local.watch")
		pipeline := &build.Pipeline{Repo: r, Workers: cfg.Workers}
		rebuild := func() error {
			target, err := enumerate.Scan{RootDir: r.RootDir(), Filter: filter.MatchAll{}}.Generate()
			if err != nil {
				return err
			}
			obj, err := pipeline.Build(target)
			if err != nil {
				return err
			}
			if err := r.Refs.WriteHead(obj.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", obj.ID)
			return nil
		}

		if err := rebuild(); err != nil {
			return err
		}
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				log.Debug("fs event", "op", event.Op.String(), "path", event.Name)
				if err := rebuild(); err != nil {
					log.Error("rebuild failed", "err", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Error("watcher error", "err", err)
			}
		}
	},
}

func init() {
	localBuildCmd.Flags().BoolVar(&localBuildSaveHead, "save-head", false, "write the resulting root id to HEAD")
	localBuildCmd.Flags().BoolVar(&localScanHidden, "hidden", false, "include dotfiles/dotdirs in the scan")

	localCmd.AddCommand(localBuildCmd, localListCmd, localUpdateCmd, localWatchCmd)
	rootCmd.AddCommand(localCmd)
}
