// Package handoff transfers control to the downstream sync tool once a
// session is resolved. Three strategies exist:
//
//   - Replace execs the target in place of syncgate with the caller's
//     arguments untouched.
//   - Injected adds the configuration-file flag when absent, then execs
//     (or, with Spawn, runs the target as a child and waits).
//   - InProcess runs the target's entry script inside the auth library's
//     runtime, bound to the session syncgate already established.
package handoff

import (
	"context"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Strategy transfers control to the downstream tool.
type Strategy interface {
	Name() string
	// Handoff does not return on a successful process replacement.
	Handoff(ctx context.Context, req Request) error
}

// ExecFunc replaces the current process image. It only returns on failure.
type ExecFunc func(path string, argv []string, env []string) error

// defaultExec is unix.Exec; tests swap it to capture the call.
var defaultExec ExecFunc = unix.Exec

// Locator resolves an executable name to a path.
type Locator interface {
	Find(name string) (string, error)
}

func baseEnv(req Request) []string {
	if req.Env != nil {
		return req.Env
	}
	return os.Environ()
}

// commandLine renders argv for log lines.
func commandLine(argv []string) string {
	return strings.Join(argv, " ")
}
