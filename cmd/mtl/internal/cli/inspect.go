package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
	"github.com/imishinist/mtl-go/pkg/mtl/refstore"
)

var revParseCmd = &cobra.Command{
	Use:   "rev-parse <expr>",
	Short: "Resolve a ref-or-id[:subpath] expression to an object id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		expr, err := refstore.ParseExpr(args[0])
		if err != nil {
			return err
		}
		id, err := r.DerefExpr(expr)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
		return nil
	},
}

var catObjectCmd = &cobra.Command{
	Use:   "cat-object <expr>",
	Short: "Print the raw tree-line contents of a resolved object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		expr, err := refstore.ParseExpr(args[0])
		if err != nil {
			return err
		}
		id, err := r.DerefExpr(expr)
		if err != nil {
			return err
		}
		entries, err := r.ReadTreeContents(id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), e.String())
		}
		return nil
	},
}

var printTreeMaxDepth int

var printTreeCmd = &cobra.Command{
	Use:   "print-tree [expr]",
	Short: "Recursively print a tree's contents, defaulting to HEAD",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		var id hash.Hash
		if len(args) == 1 {
			expr, err := refstore.ParseExpr(args[0])
			if err != nil {
				return err
			}
			id, err = r.DerefExpr(expr)
			if err != nil {
				return err
			}
		} else {
			id, err = r.Refs.ReadHead()
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tree %s\t<root>\n", id)
		return printTree(r.ReadTreeContents, out, objpath.Root, id, 0, printTreeMaxDepth)
	},
}

func printTree(read func(hash.Hash) ([]object.Object, error), out io.Writer, parent objpath.RelativePath, id hash.Hash, depth, maxDepth int) error {
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}
	entries, err := read(id)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := parent.Join(e.Basename)
		switch e.Kind {
		case object.KindTree:
			fmt.Fprintf(out, "tree %s\t%s/\n", e.ID, child)
			if err := printTree(read, out, child, e.ID, depth+1, maxDepth); err != nil {
				return err
			}
		case object.KindFile:
			fmt.Fprintf(out, "file %s\t%s\n", e.ID, child)
		}
	}
	return nil
}

func init() {
	printTreeCmd.Flags().IntVar(&printTreeMaxDepth, "max-depth", 0, "limit recursion depth (0 = unlimited)")

	rootCmd.AddCommand(revParseCmd, catObjectCmd, printTreeCmd)
}
