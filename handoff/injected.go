package handoff

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"

	"github.com/grovetools/syncgate/command"
	"github.com/grovetools/syncgate/errors"
	"github.com/sirupsen/logrus"
)

// Injected ensures the configuration-file flag is present, then execs the
// target, or with Spawn runs it as a child and waits for it.
type Injected struct {
	Target    string
	Injection Injection
	Spawn     bool
	Locator   Locator
	Exec      ExecFunc
	// Executor creates the child when Spawn is set.
	Executor command.Executor
	Logger   *logrus.Entry
}

// Name implements Strategy.
func (s *Injected) Name() string { return "inject" }

// Handoff implements Strategy.
func (s *Injected) Handoff(ctx context.Context, req Request) error {
	inj := s.Injection
	if inj.Value == "" {
		inj.Value = req.ConfigPath
	}
	args := Inject(req.Args, inj)

	if !s.Spawn {
		return execTarget(s.Target, args, req, s.Locator, s.Exec, s.Logger)
	}
	return s.spawn(ctx, args, req)
}

func (s *Injected) spawn(ctx context.Context, args []string, req Request) error {
	path, err := s.Locator.Find(s.Target)
	if err != nil {
		return err
	}
	executor := s.Executor
	if executor == nil {
		executor = &command.RealExecutor{}
	}

	cmd := executor.CommandContext(ctx, path, args...)
	cmd.Args[0] = s.Target
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = Environment(baseEnv(req), req)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return errors.CommandFailed(commandLine(cmd.Args), exitErr)
		}
		return errors.HandoffFailed(s.Target, err).WithDetail("path", path)
	}
	return nil
}
