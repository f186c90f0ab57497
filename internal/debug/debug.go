// Package debug provides env-gated diagnostic logging for craftctl.
// Output goes to stderr and is off unless CRAFTCTL_DEBUG is set or the
// --verbose flag enables it at runtime.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("CRAFTCTL_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// Enabled reports whether debug output is active.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output (the --verbose flag).
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet suppresses non-essential output (the --quiet flag).
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool {
	return quietMode
}

// Logf writes a debug line to stderr when debug output is active.
func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// PrintNormal prints informational output unless quiet mode is enabled.
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}
