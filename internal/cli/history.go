package cli

import (
	"fmt"

	"github.com/complexairport/dit/internal/dit"
	"github.com/complexairport/dit/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the first-parent commit history from HEAD",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("count", "c", -1, "limit the number of commits shown (-1 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")

	d, err := dit.Open()
	if err != nil {
		return err
	}

	commits, err := d.GetHistory(count)
	if err != nil {
		return err
	}

	for _, c := range commits {
		fmt.Printf("%s %s %s\n", styles.SymbolCommit, styles.Hash(c.Hash, true), c.Message)
		fmt.Printf("  %s %s\n", styles.Author(c.Author), styles.Date(c.Timestamp))
	}
	return nil
}
