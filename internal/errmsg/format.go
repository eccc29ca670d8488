// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Startup
	OpLoadConfig   Op = "load configuration"
	OpMountMedia   Op = "mount media"
	OpOpenNVRAM    Op = "open non-volatile storage"
	OpBeginDecoder Op = "start audio decoder"
	OpSetup        Op = "set up player"

	// Catalog
	OpScanCatalog Op = "scan catalog"
	OpResetState  Op = "reset playback state"

	// Host control
	OpParseCommand Op = "parse command"
	OpWatchMedia   Op = "watch media"
	OpMPRIS        Op = "start MPRIS"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
