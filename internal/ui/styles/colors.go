package styles

import "github.com/charmbracelet/lipgloss"

// Semantic color palette, dark-mode oriented. dit has no remotes, tags, or
// diff hunks to colorize, so only the subset the status/log/branch output
// actually needs survives from the broader TUI palette this is adapted
// from.
var (
	Accent  = lipgloss.Color("#7C3AED") // violet-500 - current-branch marker
	Success = lipgloss.Color("#10B981") // emerald-500 - added, success
	Warning = lipgloss.Color("#F59E0B") // amber-500 - modified
	Error   = lipgloss.Color("#EF4444") // red-500 - deleted, errors
	Info    = lipgloss.Color("#3B82F6") // blue-500 - commit hashes
	Muted   = lipgloss.Color("#6B7280") // gray-500 - secondary text
)

// Semantic aliases for clarity at call sites.
var (
	ColorAdded     = Success
	ColorDeleted   = Error
	ColorModified  = Warning
	ColorUntracked = Muted
	ColorHash      = Info
	ColorBranch    = Success
)
