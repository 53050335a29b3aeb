package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances and resolves executables. This
// abstraction lets tests point command creation at fake binaries without
// modifying production code.
type Executor interface {
	// Command creates a new exec.Cmd instance for the given command and arguments.
	Command(name string, args ...string) *exec.Cmd

	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd

	// LookPath resolves name against PATH.
	LookPath(name string) (string, error)
}

// RealExecutor is the production implementation of the Executor interface,
// which uses the standard os/exec package to create commands.
type RealExecutor struct{}

// Command creates a standard exec.Cmd.
func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// LookPath wraps exec.LookPath.
func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
