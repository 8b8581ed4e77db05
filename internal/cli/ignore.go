package cli

import (
	"fmt"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore add|remove|list [pattern]",
		Short: "Manage .ditignore patterns",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runIgnore,
	}
	return cmd
}

func runIgnore(cmd *cobra.Command, args []string) error {
	action := args[0]

	d, err := dit.Open()
	if err != nil {
		return err
	}
	ign, err := d.Ignore()
	if err != nil {
		return err
	}

	switch action {
	case "list":
		for _, p := range ign.Patterns() {
			fmt.Println(p)
		}
		return nil
	case "add":
		if len(args) != 2 {
			return diterr.New(diterr.KindOther, "usage: dit ignore add <pattern>")
		}
		return ign.AddPattern(args[1])
	case "remove":
		if len(args) != 2 {
			return diterr.New(diterr.KindOther, "usage: dit ignore remove <pattern>")
		}
		return ign.RemovePattern(args[1])
	default:
		return diterr.New(diterr.KindOther, "unknown ignore action: "+action)
	}
}
