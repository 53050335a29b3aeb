package handoff

import (
	"fmt"

	"github.com/grovetools/syncgate/command"
	"github.com/grovetools/syncgate/config"
	"github.com/grovetools/syncgate/errors"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators strategies are built from.
type Deps struct {
	Locator  Locator
	Executor command.Executor
	Bind     Binder
	Exec     ExecFunc
	Logger   *logrus.Entry
}

// FromConfig builds the strategy selected by cfg.Mode.
func FromConfig(cfg config.HandoffConfig, d Deps) (Strategy, error) {
	inj := Injection{Flag: cfg.ConfigFlag, Aliases: cfg.ConfigFlagAliases}

	switch cfg.Mode {
	case config.ModeReplace:
		return &Replace{Target: cfg.Target, Locator: d.Locator, Exec: d.Exec, Logger: d.Logger}, nil
	case config.ModeInject:
		return &Injected{
			Target:    cfg.Target,
			Injection: inj,
			Spawn:     cfg.Spawn,
			Locator:   d.Locator,
			Exec:      d.Exec,
			Executor:  d.Executor,
			Logger:    d.Logger,
		}, nil
	case config.ModeInProcess:
		if d.Bind == nil {
			return nil, errors.New(errors.ErrCodeInternal, "inprocess handoff needs a session binder")
		}
		return &InProcess{
			EntryScript:    cfg.EntryScript,
			FallbackScript: cfg.FallbackScript,
			Injection:      inj,
			Inject:         cfg.InjectsConfigFlag(),
			Bind:           d.Bind,
			Logger:         d.Logger,
		}, nil
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("unknown handoff mode %q", cfg.Mode))
}
