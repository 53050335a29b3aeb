// Package auth is the boundary to the external authentication library.
// syncgate never speaks the remote protocol itself; it drives the library
// through the Client interface and treats session material as opaque.
package auth

import (
	"context"
	stderrors "errors"
)

// Session is an authenticated identity plus the serialized token blob the
// auth library issued for it.
type Session struct {
	Username string
	Material string
}

// Client is the set of primitives syncgate needs from the auth library.
type Client interface {
	// Resume loads a previously saved session from dir.
	Resume(ctx context.Context, dir string) (*Session, error)
	// Probe performs an authenticated request proving s is live and
	// returns the account's username.
	Probe(ctx context.Context, s *Session) (string, error)
	// Login authenticates with a username and password. It returns an
	// *MFAChallenge error when a second factor is required.
	Login(ctx context.Context, username, password string) (*Session, error)
	// CompleteMFA finishes a login interrupted by a challenge.
	CompleteMFA(ctx context.Context, challenge *MFAChallenge, code string) (*Session, error)
	// Save writes s into dir, replacing prior content.
	Save(ctx context.Context, s *Session, dir string) error
}

// MFAChallenge is returned by Login when the account requires a second
// factor. State is opaque and must be handed back to CompleteMFA.
type MFAChallenge struct {
	Username string
	State    string
}

func (c *MFAChallenge) Error() string {
	return "multi-factor authentication required"
}

// AsMFAChallenge reports whether err carries an MFA challenge.
func AsMFAChallenge(err error) (*MFAChallenge, bool) {
	var challenge *MFAChallenge
	if stderrors.As(err, &challenge) {
		return challenge, true
	}
	return nil, false
}
