//go:build !windows

// Package stderr captures stderr output from C libraries (ALSA) that write
// directly to file descriptor 2, bypassing Go's os.Stderr, and re-logs it
// through slog so it does not interleave with the host protocol output.
package stderr

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"syscall"
)

var (
	origStderr int
	original   *os.File
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
)

// Start begins capturing stderr output and returns a file writing to the
// original stderr, for the log handler.
// Must be called early in main(), before any C library initialization.
// On error the program can continue without capture; os.Stderr is returned.
func Start() (*os.File, error) {
	if started {
		return original, nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return os.Stderr, err
	}

	// Save original stderr file descriptor
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return os.Stderr, err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	err = syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd()))
	if err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return os.Stderr, err
	}

	pipeRead = r
	pipeWrite = w
	original = os.NewFile(uintptr(origStderr), "stderr")
	started = true
	return original, nil
}

// Forward logs every captured line at warn on log until Stop is called.
func Forward(log *slog.Logger) {
	if !started {
		return
	}
	r := pipeRead
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				log.Warn("audio backend", "line", line)
			}
		}
	}()
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	if !started {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	original.Close()

	pipeWrite.Close()
	pipeRead.Close()
	started = false
}
