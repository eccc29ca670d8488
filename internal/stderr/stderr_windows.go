//go:build windows

// Package stderr provides a no-op implementation for Windows.
// Windows audio libraries don't produce the same stderr noise as ALSA.
package stderr

import (
	"log/slog"
	"os"
)

// Start is a no-op on Windows.
func Start() (*os.File, error) {
	return os.Stderr, nil
}

// Forward is a no-op on Windows.
func Forward(*slog.Logger) {}

// Stop is a no-op on Windows.
func Stop() {}
