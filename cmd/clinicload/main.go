package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gyeh/clinicload/internal/exitcode"
)

func main() {
	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && !errors.As(err, &ee) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// exitError carries the process exit code of a failed command. The
// failure is logged where it happens, so main only exits with code.
type exitError struct {
	code int
	err  error
}

func exitWith(code int, err error) error { return &exitError{code: code, err: err} }

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit code. Errors that
// carry no code come from flag parsing or argument checks.
func exitCode(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitcode.UsageError
}
