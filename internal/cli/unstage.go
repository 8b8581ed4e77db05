package cli

import (
	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newUnstageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstage <path>...",
		Short: "Remove paths from the staging area",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runUnstage,
	}
}

func runUnstage(cmd *cobra.Command, args []string) error {
	d, err := dit.Open()
	if err != nil {
		return err
	}
	paths, err := relArgs(d, args)
	if err != nil {
		return err
	}
	return d.UnstageFiles(paths)
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the staging area entirely",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	d, err := dit.Open()
	if err != nil {
		return err
	}
	return d.ClearStage()
}
