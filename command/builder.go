package command

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// MaxTimeout caps any per-command timeout.
const MaxTimeout = 10 * time.Minute

// SafeBuilder validates executables and arguments before building commands.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		validators: makeDefaultValidators(),
		executor:   exec,
	}
}

// WithDefaultTimeout sets the timeout applied to every built command.
// Zero means unbounded.
func (sb *SafeBuilder) WithDefaultTimeout(d time.Duration) *SafeBuilder {
	sb.defaultTimeout = clamp(d)
	return sb
}

// Executor returns the executor commands are created with.
func (sb *SafeBuilder) Executor() Executor {
	return sb.executor
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"executable": validateExecutable,
		"argument":   validateArgument,
		"flag":       validateFlag,
	}
}

// validateExecutable rejects names that could only work through a shell.
func validateExecutable(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("executable name cannot be empty")
	}
	if strings.ContainsAny(name, ";|&$`\n\x00") {
		return fmt.Errorf("executable name contains invalid characters: %q", name)
	}
	return nil
}

// validateArgument rejects arguments the kernel cannot pass through argv.
func validateArgument(arg string) error {
	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("argument contains a NUL byte")
	}
	return nil
}

func validateFlag(flag string) error {
	if !strings.HasPrefix(flag, "-") || len(flag) < 2 {
		return fmt.Errorf("invalid flag: %q", flag)
	}
	return validateArgument(flag)
}

// Command represents a validated command configuration
type Command struct {
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command after validating the executable and every argument.
func (sb *SafeBuilder) Build(name string, args ...string) (*Command, error) {
	if err := validateExecutable(name); err != nil {
		return nil, err
	}
	for _, arg := range args {
		if err := validateArgument(arg); err != nil {
			return nil, err
		}
	}

	return &Command{
		name:     name,
		args:     append([]string(nil), args...),
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	c.timeout = clamp(timeout)
	return c
}

// Timeout returns the effective timeout; zero means unbounded.
func (c *Command) Timeout() time.Duration {
	return c.timeout
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Context derives the execution context carrying the command timeout.
// The returned cancel must be called once the command has finished.
func (c *Command) Context(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(parent, c.timeout)
	}
	return context.WithCancel(parent)
}

// Exec creates an exec.Cmd bound to ctx, normally one returned by Context.
func (c *Command) Exec(ctx context.Context) *exec.Cmd {
	return c.executor.CommandContext(ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

func clamp(d time.Duration) time.Duration {
	if d > MaxTimeout {
		return MaxTimeout
	}
	if d < 0 {
		return 0
	}
	return d
}
