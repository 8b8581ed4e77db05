package cli

import (
	"fmt"
	"path/filepath"

	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty dit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	d, err := dit.Init(path)
	if err != nil {
		return err
	}

	fmt.Printf("Initialized empty dit repository in %s\n", filepath.Join(d.Repo.Root, ".dit"))
	return nil
}
