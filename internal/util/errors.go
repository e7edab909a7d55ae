// Package util provides utility functions and helpers used throughout the password manager.
// It includes exit codes and the mapping from errors to them.
package util

import (
	"errors"
	"fmt"
	"os"

	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/store"
)

// Exit codes
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidInput = 2
	ExitAuthFailed   = 3
	ExitIntegrityErr = 4
)

// ErrInvalidInput marks errors caused by bad arguments or prompts
var ErrInvalidInput = errors.New("invalid input")

// exit is replaced in tests
var (
	osExit = os.Exit
	exit   = osExit
)

// ExitCode returns the exit code for err
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, passman.ErrAuthFailed):
		return ExitAuthFailed
	case errors.Is(err, store.ErrSnapshotCorrupted), errors.Is(err, store.ErrJournalCorrupted):
		return ExitIntegrityErr
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, passman.ErrInvalidField),
		errors.Is(err, passman.ErrEmptyPassword),
		errors.Is(err, passman.ErrNotFound):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// ExitWithCode exits the program with the specified code and message
func ExitWithCode(code int, format string, args ...interface{}) {
	if format != "" {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	exit(code)
}

// HandleError prints err and exits with the code ExitCode assigns it
func HandleError(err error, context string) {
	if err == nil {
		return
	}
	code := ExitCode(err)
	if code == ExitIntegrityErr {
		ExitWithCode(code, "Error: %s\nRun 'passman doctor' to diagnose issues.", describe(err, context))
		return
	}
	ExitWithCode(code, "Error: %s", describe(err, context))
}

func describe(err error, context string) string {
	if context != "" {
		return fmt.Sprintf("%s - %v", context, err)
	}
	return err.Error()
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// InvalidInput returns an error matching ErrInvalidInput
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
