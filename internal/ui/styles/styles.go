package styles

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Symbols used in status/log/branch output.
const (
	SymbolSuccess = "✓"
	SymbolWarning = "⚠"
	SymbolCommit  = "●"
	SymbolCurrent = "*"
)

// NoColor reports whether color output is disabled.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("DIT_NO_COLOR") != ""
}

var (
	Bold = lipgloss.NewStyle().Bold(true)
)

var (
	AddedStyle     = lipgloss.NewStyle().Foreground(ColorAdded)
	DeletedStyle   = lipgloss.NewStyle().Foreground(ColorDeleted)
	ModifiedStyle  = lipgloss.NewStyle().Foreground(ColorModified)
	UntrackedStyle = lipgloss.NewStyle().Foreground(ColorUntracked)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	HashStyle   = lipgloss.NewStyle().Foreground(ColorHash)
	BranchStyle = lipgloss.NewStyle().Foreground(ColorBranch).Bold(true)
	AuthorStyle = lipgloss.NewStyle().Foreground(Success)
	DateStyle   = lipgloss.NewStyle().Foreground(Muted)
)

// render applies a style if colors are enabled.
func render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// Hash formats a commit hash, optionally truncated to its trailing 7 hex
// characters for one-line display.
func Hash(hash string, short bool) string {
	hash = strings.ToLower(hash)
	if short && len(hash) > 7 {
		hash = hash[len(hash)-7:]
	}
	return render(HashStyle, hash)
}

// Branch formats a branch name, marking the currently checked-out one.
func Branch(name string, current bool) string {
	if current {
		return render(BranchStyle, SymbolCurrent+" "+name)
	}
	return render(MutedStyle, "  "+name)
}

// Author formats an author name.
func Author(name string) string { return render(AuthorStyle, name) }

// Date formats a Unix timestamp as RFC3339 for log output.
func Date(timestamp int64) string {
	return render(DateStyle, time.Unix(timestamp, 0).UTC().Format(time.RFC3339))
}

// StatusPrefix returns the colored single-letter prefix for a change kind
// ("A"/"M"/"D"/"?"/" " for unchanged) used in status listings.
func StatusPrefix(kind string) string {
	switch kind {
	case "A", "new":
		return render(AddedStyle, "A")
	case "M", "modified":
		return render(ModifiedStyle, "M")
	case "D", "deleted":
		return render(DeletedStyle, "D")
	case "?", "untracked":
		return render(UntrackedStyle, "?")
	default:
		return " "
	}
}

// SuccessMsg formats a success message with a checkmark.
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message.
func ErrorMsg(msg string) string {
	return render(ErrorStyle, "Error: "+msg)
}

// WarningMsg formats a warning message.
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text.
func MutedMsg(msg string) string { return render(MutedStyle, msg) }

// SectionHeader formats a section header.
func SectionHeader(title string) string { return render(Bold, title) }

// Indent returns text indented by n spaces on every non-empty line.
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
