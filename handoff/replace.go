package handoff

import (
	"context"

	"github.com/grovetools/syncgate/errors"
	"github.com/sirupsen/logrus"
)

// Replace execs the target with the caller's arguments unchanged.
type Replace struct {
	Target  string
	Locator Locator
	Exec    ExecFunc
	Logger  *logrus.Entry
}

// Name implements Strategy.
func (r *Replace) Name() string { return "replace" }

// Handoff implements Strategy.
func (r *Replace) Handoff(ctx context.Context, req Request) error {
	return execTarget(r.Target, req.Args, req, r.Locator, r.Exec, r.Logger)
}

// execTarget locates target and replaces the process with it. argv[0] is
// the invocation name the operator would have typed.
func execTarget(target string, args []string, req Request, loc Locator, exec ExecFunc, logger *logrus.Entry) error {
	path, err := loc.Find(target)
	if err != nil {
		return err
	}
	if exec == nil {
		exec = defaultExec
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	argv := BuildArgv(target, args)
	logger.WithField("path", path).Debugf("exec %s", commandLine(argv))

	execErr := exec(path, argv, Environment(baseEnv(req), req))
	// Reaching here means exec failed: the binary exists but could not run.
	return errors.HandoffFailed(target, execErr).WithDetail("path", path)
}
