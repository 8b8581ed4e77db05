package cli

import (
	"fmt"

	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage file contents for the next commit",
		Long: `Stage file contents for the next commit.

Use "dit add ." to stage every changed path in the working tree.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	d, err := dit.Open()
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "." {
		idx, err := d.Index()
		if err != nil {
			return err
		}
		changes, err := idx.GetAllUntrackedChanges()
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		paths := make([]string, 0, len(changes))
		for p := range changes {
			paths = append(paths, p)
		}
		return d.AddFiles(paths)
	}

	paths, err := relArgs(d, args)
	if err != nil {
		return err
	}
	if err := d.AddFiles(paths); err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("add '%s'\n", p)
	}
	return nil
}
