// Package errors provides the error taxonomy for xssh runs.
//
// Run-scoped errors (ambiguity, restricted commands, bad substitution
// syntax, setup problems) abort before any network activity and map to the
// process exit code. Host-scoped errors (connection, remote execution) are
// recorded into that host's result and never abort sibling hosts.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType classifies a failure for reporting and exit-code mapping.
type ErrorType int

const (
	// SetupErrorType covers configuration, validation, and usage errors.
	SetupErrorType ErrorType = iota

	// AmbiguityErrorType marks a pattern matching multiple hosts without mass mode.
	AmbiguityErrorType

	// RestrictedErrorType marks a forbidden command in mass mode.
	RestrictedErrorType

	// SubstitutionErrorType marks malformed process-substitution syntax.
	SubstitutionErrorType

	// ConnectionErrorType covers network and SSH transport failures.
	ConnectionErrorType

	// ExecutionErrorType covers remote command failures.
	ExecutionErrorType
)

// String returns a string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case SetupErrorType:
		return "setup"
	case AmbiguityErrorType:
		return "ambiguity"
	case RestrictedErrorType:
		return "restricted"
	case SubstitutionErrorType:
		return "substitution"
	case ConnectionErrorType:
		return "connection"
	case ExecutionErrorType:
		return "execution"
	default:
		return "unknown"
	}
}

// SetupError represents a configuration, validation, or usage error.
type SetupError struct {
	Message string
}

func (e *SetupError) Error() string {
	return e.Message
}

// NewSetupError creates a setup error with a formatted message.
func NewSetupError(format string, args ...any) *SetupError {
	return &SetupError{Message: fmt.Sprintf(format, args...)}
}

// AmbiguousHostError is returned when a pattern resolves to more than one
// host and mass mode is disabled. It carries the full candidate list so the
// caller can print it and abort; it never silently picks one host.
type AmbiguousHostError struct {
	Pattern    string
	Candidates []string
}

func (e *AmbiguousHostError) Error() string {
	return fmt.Sprintf("pattern '%s' matches %d hosts (%s); use --mass to execute on multiple hosts",
		e.Pattern, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// RestrictedCommandError is returned when a mass-mode command contains a
// forbidden token. It is raised before any connection is attempted.
type RestrictedCommandError struct {
	Token string
}

func (e *RestrictedCommandError) Error() string {
	return fmt.Sprintf("the command '%s' is not allowed in mass mode", e.Token)
}

// SubstitutionError is returned for malformed process-substitution markers.
// A malformed command cannot be meaningfully sent to any host, so the build
// fails before any connection attempt.
type SubstitutionError struct {
	Marker string
	Cause  error
}

func (e *SubstitutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("process substitution '%s': %v", e.Marker, e.Cause)
	}
	return fmt.Sprintf("malformed process substitution near '%s'", e.Marker)
}

func (e *SubstitutionError) Unwrap() error {
	return e.Cause
}

// FleetError represents one or more per-host failures in an otherwise
// completed run. WorstExit carries the highest per-host exit code so the
// process can propagate it.
type FleetError struct {
	Failed    int
	Total     int
	WorstExit int
}

func (e *FleetError) Error() string {
	return fmt.Sprintf("%d/%d hosts failed (worst exit code %d)", e.Failed, e.Total, e.WorstExit)
}

// Classify maps an error string onto the host-scoped taxonomy. It is a
// best-effort textual classification used for logging, kept separate from
// the authoritative exit-status checks.
func Classify(err error) ErrorType {
	if err == nil {
		return ExecutionErrorType
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range []string{
		"connection refused", "connection reset", "no route to host",
		"network unreachable", "handshake failed", "broken pipe",
		"i/o timeout", "deadline exceeded", "unexpected eof", "dial tcp",
	} {
		if strings.Contains(msg, kw) {
			return ConnectionErrorType
		}
	}
	return ExecutionErrorType
}
