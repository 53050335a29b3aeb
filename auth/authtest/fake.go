// Package authtest provides an in-memory auth.Client for tests.
package authtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/syncgate/auth"
)

// SessionFile is the file FakeClient writes inside a session directory.
const SessionFile = "session.token"

// FakeClient is a scriptable auth.Client. Sessions are persisted as a
// single file so tests can assert on real directories.
type FakeClient struct {
	mu sync.Mutex

	// Accounts maps username to password.
	Accounts map[string]string
	// MFACodes maps username to the required second factor. Accounts
	// listed here answer Login with an *auth.MFAChallenge.
	MFACodes map[string]string
	// Live lists session materials the probe accepts. Materials issued by
	// Login/CompleteMFA are added automatically.
	Live map[string]string

	ResumeErr error
	ProbeErr  error
	LoginErr  error
	SaveErr   error

	Calls []string
	seq   int
}

// NewFakeClient creates a FakeClient with one account.
func NewFakeClient(username, password string) *FakeClient {
	return &FakeClient{
		Accounts: map[string]string{username: password},
		MFACodes: map[string]string{},
		Live:     map[string]string{},
	}
}

func (f *FakeClient) record(call string) {
	f.Calls = append(f.Calls, call)
}

// Called reports whether op was invoked.
func (f *FakeClient) Called(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == op {
			return true
		}
	}
	return false
}

// Resume implements auth.Client.
func (f *FakeClient) Resume(ctx context.Context, dir string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(auth.OpResume)
	if f.ResumeErr != nil {
		return nil, f.ResumeErr
	}
	data, err := os.ReadFile(filepath.Join(dir, SessionFile))
	if err != nil {
		return nil, fmt.Errorf("no saved session: %w", err)
	}
	return &auth.Session{Material: string(data)}, nil
}

// Probe implements auth.Client.
func (f *FakeClient) Probe(ctx context.Context, s *auth.Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(auth.OpProbe)
	if f.ProbeErr != nil {
		return "", f.ProbeErr
	}
	user, ok := f.Live[s.Material]
	if !ok {
		return "", fmt.Errorf("401 Unauthorized")
	}
	return user, nil
}

// Login implements auth.Client.
func (f *FakeClient) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(auth.OpLogin)
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if want, ok := f.Accounts[username]; !ok || want != password {
		return nil, fmt.Errorf("invalid username or password")
	}
	if _, ok := f.MFACodes[username]; ok {
		return nil, &auth.MFAChallenge{Username: username, State: "pending-" + username}
	}
	return f.issue(username), nil
}

// CompleteMFA implements auth.Client.
func (f *FakeClient) CompleteMFA(ctx context.Context, c *auth.MFAChallenge, code string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(auth.OpMFA)
	if f.MFACodes[c.Username] != code {
		return nil, fmt.Errorf("invalid MFA code")
	}
	return f.issue(c.Username), nil
}

// Save implements auth.Client.
func (f *FakeClient) Save(ctx context.Context, s *auth.Session, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(auth.OpSave)
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return os.WriteFile(filepath.Join(dir, SessionFile), []byte(s.Material), 0600)
}

// SaveFor writes a live session for username into dir, as if a previous
// run had logged in.
func (f *FakeClient) SaveFor(dir, username string) error {
	f.mu.Lock()
	s := f.issue(username)
	f.mu.Unlock()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SessionFile), []byte(s.Material), 0600)
}

func (f *FakeClient) issue(username string) *auth.Session {
	f.seq++
	material := fmt.Sprintf("token-%s-%d", username, f.seq)
	f.Live[material] = username
	return &auth.Session{Username: username, Material: material}
}

var _ auth.Client = (*FakeClient)(nil)
