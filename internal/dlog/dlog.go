// Package dlog configures the process-wide diagnostic logger.
//
// dit's user-facing output goes through internal/ui/styles; this logger is
// a separate, opt-in stream for diagnosing manager-level behavior (blob,
// tree, commit and branch creation) without cluttering the CLI.
// It stays silent unless DIT_LOG is set.
package dlog

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the package-level diagnostic logger. Configured once by Init.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.Disabled)

// Init configures Logger from the DIT_LOG environment variable, which takes
// any level name zerolog.ParseLevel accepts ("debug", "info", "warn",
// "error", ...); an empty or unparsable value disables logging.
func Init() {
	level := strings.ToLower(os.Getenv("DIT_LOG"))
	parsed, err := zerolog.ParseLevel(level)
	if level == "" || err != nil {
		parsed = zerolog.Disabled
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().Timestamp().Logger().Level(parsed)
}
