// Package cli wires the command tree dit's binary exposes, following the
// teacher's newXCmd()-per-command pattern and centralized error
// formatting (spec.md §6, "CLI surface").
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/ui/styles"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dit",
	Short: "A minimal Git-like version control engine",
	Long: `dit is a minimal content-addressed version control engine: an object
store of blobs, trees, and commits, a staging index, and a branch/HEAD
reference model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree, formatting any *diterr.Error the way the
// facade surfaces it (spec.md §7, "errors are formatted as single-line
// messages categorized by kind").
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		var ditErr *diterr.Error
		if errors.As(err, &ditErr) {
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(ditErr.Error()))
		} else {
			fmt.Fprintln(os.Stderr, styles.ErrorMsg(err.Error()))
		}
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newUnstageCmd(),
		newClearCmd(),
		newStatusCmd(),
		newCommitCmd(),
		newBranchCmd(),
		newResetCmd(),
		newConfigCmd(),
		newIgnoreCmd(),
		newHistoryCmd(),
	)
}
