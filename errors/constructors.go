package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *GateError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *GateError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// AuthLibraryMissing reports that the auth helper could not be located.
func AuthLibraryMissing(helper string, err error) *GateError {
	return Wrap(err, ErrCodeAuthLibraryMissing,
		fmt.Sprintf("auth library helper '%s' not found", helper)).
		WithDetail("helper", helper)
}

// SessionInvalid marks a stored session as unusable. It is never fatal on
// its own; the resolver treats it as a signal to log in again.
func SessionInvalid(reason string, err error) *GateError {
	return Wrap(err, ErrCodeSessionInvalid, reason)
}

// EmptyInput creates the error for a blank answer to a prompt.
func EmptyInput(field string) *GateError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("no %s provided", field)).
		WithDetail("field", field)
}

// LoginFailed wraps any failure raised by the login primitive.
func LoginFailed(err error) *GateError {
	return Wrap(err, ErrCodeLoginFailed, "login failed")
}

// PersistenceFailed creates a write/verify failure for a path.
func PersistenceFailed(what, path string, err error) *GateError {
	return Wrap(err, ErrCodePersistenceFailed, fmt.Sprintf("failed to persist %s", what)).
		WithDetail("path", path)
}

// ExecutableNotFound reports a handoff target missing from every search location.
func ExecutableNotFound(name string, searched []string) *GateError {
	return New(ErrCodeExecutableNotFound, fmt.Sprintf("%s not found", name)).
		WithDetail("target", name).
		WithDetail("searched", searched)
}

// HandoffFailed wraps a failure to transfer control to the target.
func HandoffFailed(target string, err error) *GateError {
	return Wrap(err, ErrCodeHandoffFailed, fmt.Sprintf("handoff to %s failed", target)).
		WithDetail("target", target)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *GateError {
	gateErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		gateErr = gateErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return gateErr
}

// CommandExited records a non-zero status reported by a downstream runner
// that does not surface an *exec.ExitError.
func CommandExited(cmd string, status int) *GateError {
	return New(ErrCodeCommandFailed, fmt.Sprintf("command exited with status %d: %s", status, cmd)).
		WithDetail("command", cmd).
		WithDetail("exitCode", status)
}
