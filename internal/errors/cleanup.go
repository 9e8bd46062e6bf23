// Package errors provides utilities for error handling in electron-inspector.
package errors

import (
	"errors"
	"io"
	"os/exec"

	"github.com/rs/zerolog"
)

// DeferClose properly closes an io.Closer with logging.
// Use this in defer statements to avoid suppressing close errors.
func DeferClose(logger zerolog.Logger, closer io.Closer, msg string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Err(err).Msg(msg)
	}
}

// ExitCode extracts the exit status of a finished command from the error
// returned by exec.Cmd.Wait or Run. A nil error is exit code 0. ok is false
// when err does not carry an exit status (the process never ran, or I/O failed).
func ExitCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	code = exitErr.ExitCode()
	if code < 0 {
		// Killed by a signal; mirror the shell convention.
		return 1, true
	}
	return code, true
}
