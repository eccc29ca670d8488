//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpMountMedia,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpMountMedia,
			err:      errors.New("file not found"),
			expected: "Failed to mount media: file not found",
		},
		{
			name:     "decoder operation",
			op:       OpBeginDecoder,
			err:      errors.New("no audio device"),
			expected: "Failed to start audio decoder: no audio device",
		},
		{
			name:     "nvram operation",
			op:       OpOpenNVRAM,
			err:      errors.New("permission denied"),
			expected: "Failed to open non-volatile storage: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLoadConfig,
			context:  "config.toml",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpLoadConfig,
			context:  "config.toml",
			err:      errors.New("permission denied"),
			expected: "Failed to load configuration 'config.toml': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpMountMedia,
			context:  "",
			err:      errors.New("no such directory"),
			expected: "Failed to mount media: no such directory",
		},
		{
			name:     "command with input context",
			op:       OpParseCommand,
			context:  "seek abc",
			err:      errors.New("invalid number"),
			expected: "Failed to parse command 'seek abc': invalid number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpLoadConfig, OpMountMedia, OpOpenNVRAM, OpBeginDecoder, OpSetup,
		OpScanCatalog, OpResetState,
		OpParseCommand, OpWatchMedia, OpMPRIS,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
