package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/syncgate/errors"
)

// ErrorHandler prints user-facing diagnostics for failed runs. Output goes
// to stderr: stdout belongs to the prompt protocol and the downstream tool.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	w := h.Out
	gateErr, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeAuthLibraryMissing:
		fmt.Fprintf(w, "❌ Missing auth library dependency: helper '%v' not found.\n", gateErr.Details["helper"])
		fmt.Fprintf(w, "Install it next to syncgate or on PATH, or set auth.helper / SYNCGATE_AUTH_HELPER.\n")

	case errors.ErrCodeSessionInvalid:
		fmt.Fprintf(w, "❌ No usable session: %s\n", gateErr.Message)

	case errors.ErrCodeInvalidInput:
		fmt.Fprintf(w, "❌ %s. Aborting.\n", capitalize(gateErr.Message))

	case errors.ErrCodeLoginFailed:
		fmt.Fprintf(w, "❌ Login failed: %v\n", causeOf(gateErr))

	case errors.ErrCodePersistenceFailed:
		fmt.Fprintf(w, "❌ Could not save session to %v: %v\n", gateErr.Details["path"], causeOf(gateErr))

	case errors.ErrCodeExecutableNotFound:
		fmt.Fprintf(w, "❌ %s\n", capitalize(gateErr.Message))
		if searched, ok := gateErr.Details["searched"].([]string); ok && len(searched) > 0 {
			fmt.Fprintf(w, "Searched: %s\n", strings.Join(searched, ", "))
		}

	case errors.ErrCodeHandoffFailed:
		fmt.Fprintf(w, "❌ Failed to launch %v: %v\n", gateErr.Details["target"], causeOf(gateErr))

	case errors.ErrCodeCommandFailed:
		// The downstream tool already reported its own failure.
		if h.Verbose {
			fmt.Fprintf(w, "❌ %s\n", gateErr.Message)
		}

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigNotFound:
		fmt.Fprintf(w, "❌ %s\n", gateErr.Message)
		if gateErr.Cause != nil {
			fmt.Fprintf(w, "%v\n", gateErr.Cause)
		}

	default:
		fmt.Fprintf(w, "❌ Error: %v\n", err)
	}

	if h.Verbose && gateErr != nil {
		fmt.Fprintf(w, "\nError details:\n%s\n", gateErr.ToJSON())
	}
	return err
}

func causeOf(e *errors.GateError) interface{} {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
