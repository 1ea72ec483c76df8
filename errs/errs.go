// Package errs defines the error kinds shared by the client applications.
//
// Errors wrapping one of the sentinel kinds are "known": conditions the
// application is expected to handle and report, as opposed to bugs. Use
// fmt.Errorf with %w to attach context:
//
//	fmt.Errorf("%w: no connection established", errs.ErrNotConnected)
package errs

import (
	"context"
	"errors"
)

// Sentinel error kinds. Wrap them rather than returning them bare.
var (
	// ErrNotConnected is an operation requiring a live connection while
	// none exists.
	ErrNotConnected = errors.New("not connected to server")

	// ErrAuthentication is a credentials or handshake rejection by the
	// server. Never transient.
	ErrAuthentication = errors.New("authentication refused by server")

	// ErrNetwork is a transient unreachability of the server.
	ErrNetwork = errors.New("network error")

	// ErrParameter is a structurally invalid endpoint or configuration.
	ErrParameter = errors.New("invalid server parameter")
)

// IsKnown reports whether err wraps one of the known error kinds.
func IsKnown(err error) bool {
	return errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrParameter)
}

// Exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitKnown       = 1
	ExitUnexpected  = 2
	ExitInterrupted = 255
)

// ExitCode maps an error to a process exit code: 0 for nil, 255 for an
// interrupt (context cancellation), 1 for a known error kind and 2 for
// anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case IsKnown(err):
		return ExitKnown
	default:
		return ExitUnexpected
	}
}
