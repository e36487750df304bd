package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/pkg/mtl/gc"
	"github.com/imishinist/mtl-go/pkg/mtl/pack"
)

var gcDryRun bool

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Sweep loose objects unreachable from HEAD or any named ref",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		stats, err := gc.Run(r, gcDryRun)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if stats.DryRun {
			fmt.Fprintf(out, "reachable: %d\twould sweep: %d\n", stats.Reachable, stats.Swept)
		} else {
			fmt.Fprintf(out, "reachable: %d\tswept: %d\n", stats.Reachable, stats.Swept)
		}
		return nil
	},
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Migrate loose objects into the packed object table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		stats, err := pack.Run(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated: %d\tskipped: %d\n", stats.Migrated, stats.Skipped)
		return nil
	},
}

func init() {
	gcCmd.Flags().BoolVar(&gcDryRun, "dry", false, "report what would be swept without deleting anything")
	rootCmd.AddCommand(gcCmd, packCmd)
}
