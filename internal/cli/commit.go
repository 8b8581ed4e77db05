package cli

import (
	"fmt"

	"github.com/complexairport/dit/internal/dit"
	"github.com/complexairport/dit/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a new commit from the staging area",
		Args:  cobra.NoArgs,
		RunE:  runCommit,
	}
	cmd.Flags().StringP("message", "m", "", "commit message")
	cmd.Flags().StringP("author", "a", "", "author, overriding config's user.name")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func runCommit(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("message")
	author, _ := cmd.Flags().GetString("author")

	d, err := dit.Open()
	if err != nil {
		return err
	}

	commit, err := d.Commit(message, author)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", styles.Hash(commit.Hash, true), message)
	return nil
}
