package cli

import (
	"fmt"
	"sort"

	"github.com/complexairport/dit/internal/dit"
	"github.com/complexairport/dit/internal/status"
	"github.com/complexairport/dit/internal/ui/styles"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged and unstaged changes",
		Long: `Shows changes staged for the next commit (tracked, relative to HEAD)
and changes in the working tree not yet staged (untracked, relative to
the index).`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := dit.Open()
	if err != nil {
		return err
	}

	b, err := d.Branch()
	if err != nil {
		return err
	}
	if name := b.CurrentBranch(); name != "" {
		fmt.Printf("On branch %s\n", styles.Branch(name, true))
	} else if commit := b.CurrentCommit(); commit != "" {
		fmt.Printf("HEAD detached at %s\n", styles.Hash(commit, true))
	} else {
		fmt.Println("No commits yet")
	}

	report, err := d.Status()
	if err != nil {
		return err
	}

	printTrackedSection(report.Tracked)
	printUntrackedSection(report.Untracked)

	if len(report.Tracked) == 0 && len(report.Untracked) == 0 {
		fmt.Println("nothing to commit, working tree clean")
	}
	return nil
}

func printTrackedSection(tracked map[string]status.TrackedChange) {
	if len(tracked) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(styles.SectionHeader("Changes staged for commit:"))
	for _, p := range sortedKeys(tracked) {
		kind := kindLetter(tracked[p].Kind.String())
		fmt.Printf("  %s %s\n", styles.StatusPrefix(kind), p)
	}
}

func printUntrackedSection(untracked map[string]status.UntrackedChange) {
	if len(untracked) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(styles.SectionHeader("Changes not staged:"))
	for _, p := range sortedUntrackedKeys(untracked) {
		kind := kindLetter(untracked[p].Kind.String())
		fmt.Printf("  %s %s\n", styles.StatusPrefix(kind), p)
	}
}

func kindLetter(kind string) string {
	switch kind {
	case "new":
		return "A"
	case "modified":
		return "M"
	case "deleted":
		return "D"
	default:
		return "?"
	}
}

func sortedKeys(m map[string]status.TrackedChange) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUntrackedKeys(m map[string]status.UntrackedChange) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
