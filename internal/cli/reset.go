package cli

import (
	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/dit"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <commit> [soft|mixed|hard]",
		Short: "Move HEAD to a commit, optionally touching the index/working tree",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runReset,
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	commit := args[0]
	mode := "mixed"
	if len(args) == 2 {
		mode = args[1]
	}

	d, err := dit.Open()
	if err != nil {
		return err
	}

	switch mode {
	case "soft":
		return d.SoftReset(commit)
	case "mixed":
		return d.MixedReset(commit)
	case "hard":
		return d.HardReset(commit)
	default:
		return diterr.New(diterr.KindOther, "unknown reset mode: "+mode)
	}
}
