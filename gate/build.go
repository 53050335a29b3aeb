package gate

import (
	"github.com/grovetools/syncgate/auth"
	"github.com/grovetools/syncgate/command"
	"github.com/grovetools/syncgate/config"
	"github.com/grovetools/syncgate/handoff"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/grovetools/syncgate/prompt"
	"github.com/grovetools/syncgate/resolver"
	"github.com/grovetools/syncgate/store"
	"github.com/grovetools/syncgate/util/delegation"
	"github.com/sirupsen/logrus"
)

// Options override the production collaborators.
type Options struct {
	Prompter resolver.CredentialPrompter
	Executor command.Executor
	Exec     handoff.ExecFunc
	Logger   *logrus.Entry
}

// Components is everything Build wires together.
type Components struct {
	Layout       paths.Layout
	Bridge       *auth.Bridge
	Store        *store.Store
	Resolver     *resolver.Resolver
	Strategy     handoff.Strategy
	Orchestrator *Orchestrator
}

// Build wires a run from configuration. The auth helper is checked first:
// without it nothing else can work, so AUTH_LIBRARY_MISSING is returned
// before any prompt or filesystem access.
func Build(cfg *config.Config, opts Options) (*Components, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	executor := opts.Executor
	if executor == nil {
		executor = &command.RealExecutor{}
	}

	timeout, err := cfg.AuthTimeout()
	if err != nil {
		return nil, err
	}
	builder := command.NewSafeBuilderWithExecutor(executor).WithDefaultTimeout(timeout)
	locator := delegation.NewLocator(executor)

	bridge := auth.NewBridge(cfg.Auth.Helper, cfg.Auth.Args, builder, locator, logger)
	if err := bridge.Available(); err != nil {
		return nil, err
	}

	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = prompt.NewStdio()
	}

	st := store.New(layout, bridge, logger)
	res := resolver.New(st, bridge, prompter, logger)

	strategy, err := handoff.FromConfig(cfg.Handoff, handoff.Deps{
		Locator:  locator,
		Executor: executor,
		Bind:     func(s *auth.Session) handoff.Invoker { return bridge.Bind(s) },
		Exec:     opts.Exec,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &Components{
		Layout:       layout,
		Bridge:       bridge,
		Store:        st,
		Resolver:     res,
		Strategy:     strategy,
		Orchestrator: New(res, strategy, layout, cfg.Handoff.Target, logger),
	}, nil
}
