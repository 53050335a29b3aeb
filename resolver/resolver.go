// Package resolver decides, per run, whether the saved session can be
// reused or an interactive login is needed, and persists the outcome.
//
//	START -> CHECKING_EXISTING
//	CHECKING_EXISTING -> VALID                (dir exists, resume and probe succeed)
//	CHECKING_EXISTING -> INVALID -> PROMPTING -> AUTHENTICATING
//	AUTHENTICATING -> MFA_PROMPTING -> AUTHENTICATING   (at most once)
//	AUTHENTICATING -> AUTHENTICATED | LOGIN_FAILED
//	VALID | AUTHENTICATED -> DONE
package resolver

import (
	"context"
	"fmt"

	"github.com/grovetools/syncgate/auth"
	"github.com/grovetools/syncgate/errors"
	"github.com/sirupsen/logrus"
)

// State is a resolver state name.
type State string

const (
	StateStart            State = "START"
	StateCheckingExisting State = "CHECKING_EXISTING"
	StateValid            State = "VALID"
	StateInvalid          State = "INVALID"
	StatePrompting        State = "PROMPTING"
	StateAuthenticating   State = "AUTHENTICATING"
	StateMFAPrompting     State = "MFA_PROMPTING"
	StateAuthenticated    State = "AUTHENTICATED"
	StateLoginFailed      State = "LOGIN_FAILED"
	StateDone             State = "DONE"
)

// SessionStore is what the resolver needs from the session store adapter.
type SessionStore interface {
	SessionExists() bool
	ResumeSession(ctx context.Context) (*auth.Session, error)
	SaveSession(ctx context.Context, s *auth.Session) error
	PersistCredentials(username, password string) error
}

// CredentialPrompter asks the operator for credentials.
type CredentialPrompter interface {
	Credentials() (username, password string, err error)
	MFACode() (string, error)
}

// Result is the outcome of a successful resolution.
type Result struct {
	Session *auth.Session
	Final   State
	// Trace lists every state visited, in order.
	Trace []State
	// Resumed is true when the saved session was reused.
	Resumed bool
}

// Resolver runs the session state machine once per invocation.
type Resolver struct {
	store  SessionStore
	client auth.Client
	prompt CredentialPrompter
	logger *logrus.Entry
}

// New creates a Resolver.
func New(store SessionStore, client auth.Client, prompt CredentialPrompter, logger *logrus.Entry) *Resolver {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{store: store, client: client, prompt: prompt, logger: logger}
}

type run struct {
	*Resolver
	trace []State
}

func (r *run) enter(s State) {
	r.trace = append(r.trace, s)
	r.logger.WithField("state", s).Debug("Resolver transition")
}

// Check runs only CHECKING_EXISTING: no prompt, no login. It returns the
// live session or a SESSION_INVALID error.
func (r *Resolver) Check(ctx context.Context) (*auth.Session, error) {
	if !r.store.SessionExists() {
		return nil, errors.SessionInvalid("no saved session", nil)
	}
	return r.store.ResumeSession(ctx)
}

// Resolve returns an authenticated session, reusing the saved one when it
// is still live and otherwise logging in interactively. On error the
// returned Result still carries the trace up to the failure.
func (r *Resolver) Resolve(ctx context.Context) (*Result, error) {
	st := &run{Resolver: r}
	st.enter(StateStart)
	st.enter(StateCheckingExisting)

	if session := st.checkExisting(ctx); session != nil {
		st.enter(StateValid)
		st.enter(StateDone)
		r.logger.WithField("username", session.Username).Info("Resumed existing session")
		return &Result{Session: session, Final: StateDone, Trace: st.trace, Resumed: true}, nil
	}

	st.enter(StateInvalid)
	session, err := st.login(ctx)
	if err != nil {
		return &Result{Final: st.trace[len(st.trace)-1], Trace: st.trace}, err
	}

	st.enter(StateDone)
	return &Result{Session: session, Final: StateDone, Trace: st.trace}, nil
}

// checkExisting never fails: every cause of an unusable session is logged
// and reported as nil.
func (r *run) checkExisting(ctx context.Context) *auth.Session {
	if !r.store.SessionExists() {
		r.logger.Info("No saved session found")
		return nil
	}
	session, err := r.store.ResumeSession(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("Saved session unusable, logging in again")
		return nil
	}
	return session
}

func (r *run) login(ctx context.Context) (*auth.Session, error) {
	r.enter(StatePrompting)
	username, password, err := r.prompt.Credentials()
	if err != nil {
		return nil, err
	}

	r.enter(StateAuthenticating)
	session, err := r.client.Login(ctx, username, password)
	if challenge, ok := auth.AsMFAChallenge(err); ok {
		r.enter(StateMFAPrompting)
		code, promptErr := r.prompt.MFACode()
		if promptErr != nil {
			return nil, promptErr
		}
		r.enter(StateAuthenticating)
		session, err = r.client.CompleteMFA(ctx, challenge, code)
	}
	if err == nil && session == nil {
		err = fmt.Errorf("auth library returned no session")
	}
	if err != nil {
		r.enter(StateLoginFailed)
		return nil, errors.LoginFailed(err).WithDetail("username", username)
	}
	if session.Username == "" {
		session.Username = username
	}

	if err := r.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	r.enter(StateAuthenticated)
	r.logger.WithField("username", session.Username).Info("Login successful")

	if err := r.store.PersistCredentials(username, password); err != nil {
		r.logger.WithError(err).Warn("Failed to store credentials in config document; continuing")
	}
	return session, nil
}
