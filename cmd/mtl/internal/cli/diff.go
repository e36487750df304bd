package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/pkg/mtl/diff"
	"github.com/imishinist/mtl-go/pkg/mtl/refstore"
)

var diffMaxDepth int

var diffCmd = &cobra.Command{
	Use:   "diff <expr-a> <expr-b>",
	Short: "Structurally diff two resolved trees",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		exprA, err := refstore.ParseExpr(args[0])
		if err != nil {
			return err
		}
		exprB, err := refstore.ParseExpr(args[1])
		if err != nil {
			return err
		}
		a, err := r.DerefExpr(exprA)
		if err != nil {
			return err
		}
		b, err := r.DerefExpr(exprB)
		if err != nil {
			return err
		}

		changes, err := diff.Diff(r, a, b, diff.Options{MaxDepth: diffMaxDepth})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range changes {
			switch c.Op {
			case diff.Delete:
				fmt.Fprintf(out, "- %s\n", c.Path)
			case diff.Insert:
				fmt.Fprintf(out, "+ %s\n", c.Path)
			case diff.Replace:
				fmt.Fprintf(out, "~ %s\n", c.Path)
			}
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().IntVar(&diffMaxDepth, "max-depth", 0, "limit recursion depth (0 = unlimited)")
	rootCmd.AddCommand(diffCmd)
}
