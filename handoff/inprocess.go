package handoff

import (
	"context"
	stderrors "errors"
	"os/exec"

	"github.com/grovetools/syncgate/auth"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/util/pathutil"
	"github.com/sirupsen/logrus"
)

// Invoker runs an entry script as an already-authenticated identity.
// argv[0] is the script path. env is the complete environment.
type Invoker interface {
	Invoke(ctx context.Context, argv []string, env []string) error
}

// Binder produces an Invoker bound to a session. The auth bridge's Bind is
// the production binder: the downstream's client constructor is bound to
// the session so it never re-prompts.
type Binder func(s *auth.Session) Invoker

// InProcess runs the downstream entry script inside the auth library's
// runtime instead of as an independent process.
type InProcess struct {
	// EntryScript is tried first; FallbackScript when it is unset or missing.
	EntryScript    string
	FallbackScript string
	// Injection is applied when Inject is set.
	Injection Injection
	Inject    bool
	Bind      Binder
	Logger    *logrus.Entry
}

// Name implements Strategy.
func (p *InProcess) Name() string { return "inprocess" }

// LocateScript returns the first existing entry script.
func (p *InProcess) LocateScript() (string, error) {
	var searched []string
	for _, candidate := range []string{p.EntryScript, p.FallbackScript} {
		if candidate == "" {
			continue
		}
		path, err := pathutil.Expand(candidate)
		if err != nil {
			path = candidate
		}
		searched = append(searched, path)
		if pathutil.IsRegularFile(path) {
			return path, nil
		}
	}
	return "", errors.ExecutableNotFound("downstream entry script", searched)
}

// Handoff implements Strategy.
func (p *InProcess) Handoff(ctx context.Context, req Request) error {
	logger := p.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	script, err := p.LocateScript()
	if err != nil {
		return err
	}
	if req.Session == nil {
		return errors.New(errors.ErrCodeInternal, "in-process handoff requires an authenticated session")
	}

	args := req.Args
	if p.Inject {
		inj := p.Injection
		if inj.Value == "" {
			inj.Value = req.ConfigPath
		}
		args = Inject(args, inj)
	}
	argv := BuildArgv(script, args)

	logger.WithField("username", req.Session.Username).Debugf("invoke %s", commandLine(argv))
	err = p.Bind(req.Session).Invoke(ctx, argv, Environment(baseEnv(req), req))
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return errors.CommandFailed(commandLine(argv), exitErr)
	}
	if errors.GetCode(err) == errors.ErrCodeCommandFailed {
		return err
	}
	gateErr := errors.HandoffFailed(script, err)
	logger.WithError(err).WithField("script", script).Error("In-process invocation failed")
	return gateErr
}
