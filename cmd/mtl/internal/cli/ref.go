package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage named references (HEAD and refs/<name>)",
}

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every named reference and the object id it points at",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		if head, err := r.Refs.ReadHead(); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "HEAD\t%s\n", head)
		}
		names, err := r.Refs.ListRefs()
		if err != nil {
			return err
		}
		for _, name := range names {
			id, err := r.Refs.Deref(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, id)
		}
		return nil
	},
}

var refSaveCmd = &cobra.Command{
	Use:   "save <name> <object-id>",
	Short: "Create or overwrite a named reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		id, err := hash.FromHex(args[1])
		if err != nil {
			return fmt.Errorf("ref save: %w", err)
		}
		return r.Refs.Save(args[0], id)
	},
}

var refDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a named reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()
		return r.Refs.Delete(args[0])
	},
}

func init() {
	refCmd.AddCommand(refListCmd, refSaveCmd, refDeleteCmd)
	rootCmd.AddCommand(refCmd)
}
