package cli

import (
	"fmt"
	"sort"

	"github.com/complexairport/dit/internal/dit"
	"github.com/complexairport/dit/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List, create, switch, remove, or merge branches",
		Args:  cobra.NoArgs,
		RunE:  runBranchList,
	}
	cmd.AddCommand(newBranchNewCmd(), newBranchSwitchCmd(), newBranchRemoveCmd(), newBranchMergeCmd())
	return cmd
}

func runBranchList(cmd *cobra.Command, args []string) error {
	d, err := dit.Open()
	if err != nil {
		return err
	}
	b, err := d.Branch()
	if err != nil {
		return err
	}
	names, err := b.ListBranches()
	if err != nil {
		return err
	}
	sort.Strings(names)
	current := b.CurrentBranch()
	for _, name := range names {
		fmt.Println(styles.Branch(name, name == current))
	}
	return nil
}

func newBranchNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new branch pointing at the current commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dit.Open()
			if err != nil {
				return err
			}
			b, err := d.Branch()
			if err != nil {
				return err
			}
			return b.CreateBranch(args[0])
		},
	}
}

func newBranchSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch <name>",
		Short: "Switch the current branch and materialize its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hard, _ := cmd.Flags().GetBool("hard")
			d, err := dit.Open()
			if err != nil {
				return err
			}
			b, err := d.Branch()
			if err != nil {
				return err
			}
			idx, err := d.Index()
			if err != nil {
				return err
			}
			return b.SwitchBranch(args[0], hard, idx)
		},
	}
	cmd.Flags().Bool("hard", false, "discard tracked changes in the index before switching")
	return cmd
}

func newBranchRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a branch (not the currently checked-out one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dit.Open()
			if err != nil {
				return err
			}
			b, err := d.Branch()
			if err != nil {
				return err
			}
			return b.RemoveBranch(args[0])
		},
	}
}

func newBranchMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <name>",
		Short: "Fast-forward the current branch to another branch's head",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dit.Open()
			if err != nil {
				return err
			}
			b, err := d.Branch()
			if err != nil {
				return err
			}
			return b.MergeTo(args[0])
		},
	}
}
