// Package gate sequences one syncgate run: resolve a session, then hand
// control to the downstream tool.
package gate

import (
	"context"
	"strings"

	"github.com/grovetools/syncgate/handoff"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/grovetools/syncgate/resolver"
	"github.com/sirupsen/logrus"
)

// SessionResolver yields an authenticated session.
type SessionResolver interface {
	Resolve(ctx context.Context) (*resolver.Result, error)
}

// Orchestrator runs the resolve-then-handoff sequence.
type Orchestrator struct {
	resolver SessionResolver
	strategy handoff.Strategy
	layout   paths.Layout
	target   string
	logger   *logrus.Entry
}

// New creates an Orchestrator. target is the name shown in the launch line.
func New(r SessionResolver, s handoff.Strategy, layout paths.Layout, target string, logger *logrus.Entry) *Orchestrator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Orchestrator{resolver: r, strategy: s, layout: layout, target: target, logger: logger}
}

// Strategy returns the handoff strategy in use.
func (o *Orchestrator) Strategy() handoff.Strategy {
	return o.strategy
}

// Run resolves a session and hands off with args. Errors are returned as
// produced so the entry point can map them to an exit status. A
// successful process-replacing handoff never returns.
func (o *Orchestrator) Run(ctx context.Context, args []string) error {
	o.logger.WithFields(logrus.Fields{
		"mode":   o.strategy.Name(),
		"target": o.target,
	}).Info("Starting syncgate")

	res, err := o.resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	o.logger.WithFields(logrus.Fields{
		"username": res.Session.Username,
		"resumed":  res.Resumed,
		"trace":    res.Trace,
	}).Debug("Session resolved")

	o.logger.Infof("Launching: %s", strings.TrimSpace(o.target+" "+strings.Join(args, " ")))
	return o.strategy.Handoff(ctx, handoff.Request{
		Args:       args,
		ConfigPath: o.layout.ConfigDocument,
		SessionDir: o.layout.SessionDir,
		Session:    res.Session,
	})
}
