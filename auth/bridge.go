package auth

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/grovetools/syncgate/command"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/util/delegation"
	"github.com/sirupsen/logrus"
)

// Helper operations.
const (
	OpResume = "resume"
	OpProbe  = "probe"
	OpLogin  = "login"
	OpMFA    = "mfa"
	OpSave   = "save"
	OpRun    = "run"
)

// SessionFD is the descriptor on which the run operation receives the
// session, as the first entry of ExtraFiles.
const SessionFD = 3

// request is written to the helper's stdin as a single JSON object.
type request struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Session  string `json:"session,omitempty"`
	MFAState string `json:"mfa_state,omitempty"`
	Code     string `json:"code,omitempty"`
	Dir      string `json:"dir,omitempty"`
}

// response is the single JSON object the helper prints on stdout.
type response struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Username string `json:"username,omitempty"`
	Session  string `json:"session,omitempty"`
	MFAState string `json:"mfa_state,omitempty"`
}

// Bridge implements Client by running a helper executable that hosts the
// auth library, once per operation:
//
//	<helper> [args...] <op>
//
// with a JSON request on stdin and a JSON response on stdout. Passwords
// travel only on stdin.
type Bridge struct {
	helper  string
	args    []string
	builder *command.SafeBuilder
	locator *delegation.Locator
	logger  *logrus.Entry

	path string
}

// NewBridge creates a Bridge for helper. builder carries the executor and
// the per-call timeout.
func NewBridge(helper string, args []string, builder *command.SafeBuilder, locator *delegation.Locator, logger *logrus.Entry) *Bridge {
	if builder == nil {
		builder = command.NewSafeBuilder()
	}
	if locator == nil {
		locator = delegation.NewLocator(builder.Executor())
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Bridge{
		helper:  helper,
		args:    append([]string(nil), args...),
		builder: builder,
		locator: locator,
		logger:  logger,
	}
}

// Available resolves the helper executable. It fails with
// AUTH_LIBRARY_MISSING when the helper cannot be found.
func (b *Bridge) Available() error {
	if b.path != "" {
		return nil
	}
	path, err := b.locator.Find(b.helper)
	if err != nil {
		return errors.AuthLibraryMissing(b.helper, err)
	}
	b.path = path
	return nil
}

// Path returns the resolved helper path, or "" before Available succeeds.
func (b *Bridge) Path() string {
	return b.path
}

// Resume loads a saved session from dir.
func (b *Bridge) Resume(ctx context.Context, dir string) (*Session, error) {
	resp, err := b.call(ctx, OpResume, request{Dir: dir})
	if err != nil {
		return nil, err
	}
	if resp.Session == "" {
		return nil, fmt.Errorf("%s: helper returned no session", OpResume)
	}
	return &Session{Username: resp.Username, Material: resp.Session}, nil
}

// Probe checks the session is live and returns the account username.
func (b *Bridge) Probe(ctx context.Context, s *Session) (string, error) {
	resp, err := b.call(ctx, OpProbe, request{Session: s.Material})
	if err != nil {
		return "", err
	}
	if resp.Username == "" {
		return "", fmt.Errorf("%s: helper returned no username", OpProbe)
	}
	return resp.Username, nil
}

// Login authenticates with username and password.
func (b *Bridge) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := b.call(ctx, OpLogin, request{Username: username, Password: password})
	if err != nil {
		var challenge *MFAChallenge
		if stderrors.As(err, &challenge) {
			challenge.Username = username
		}
		return nil, err
	}
	return sessionFrom(resp, username)
}

// CompleteMFA submits the second-factor code for a pending challenge.
func (b *Bridge) CompleteMFA(ctx context.Context, challenge *MFAChallenge, code string) (*Session, error) {
	resp, err := b.call(ctx, OpMFA, request{Username: challenge.Username, MFAState: challenge.State, Code: code})
	if err != nil {
		if _, again := AsMFAChallenge(err); again {
			return nil, fmt.Errorf("second factor rejected")
		}
		return nil, err
	}
	return sessionFrom(resp, challenge.Username)
}

// Save writes the session into dir.
func (b *Bridge) Save(ctx context.Context, s *Session, dir string) error {
	_, err := b.call(ctx, OpSave, request{Username: s.Username, Session: s.Material, Dir: dir})
	return err
}

func sessionFrom(resp *response, username string) (*Session, error) {
	if resp.Session == "" {
		return nil, fmt.Errorf("helper returned no session")
	}
	if resp.Username != "" {
		username = resp.Username
	}
	return &Session{Username: username, Material: resp.Session}, nil
}

// call runs one helper operation and decodes its response. A response with
// ok=false and a mfa_state becomes an *MFAChallenge; any other ok=false
// becomes an error carrying the helper's message verbatim.
func (b *Bridge) call(ctx context.Context, op string, req request) (*response, error) {
	if err := b.Available(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	cmd, err := b.builder.Build(b.path, append(append([]string(nil), b.args...), op)...)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := cmd.Context(ctx)
	defer cancel()

	var stdout, stderr bytes.Buffer
	c := cmd.Exec(runCtx)
	c.Stdin = bytes.NewReader(payload)
	c.Stdout = &stdout
	c.Stderr = &stderr

	b.logger.WithField("op", op).Debug("Calling auth helper")
	runErr := c.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s: auth helper timed out after %s", op, cmd.Timeout())
	}

	var resp response
	if decodeErr := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); decodeErr != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%s: %w%s", op, runErr, stderrSuffix(stderr.String()))
		}
		return nil, fmt.Errorf("%s: malformed helper response: %w", op, decodeErr)
	}

	if !resp.OK {
		if resp.MFAState != "" {
			return nil, &MFAChallenge{Username: resp.Username, State: resp.MFAState}
		}
		msg := resp.Error
		if msg == "" {
			msg = "helper reported failure"
		}
		return nil, stderrors.New(msg)
	}
	if runErr != nil {
		return nil, fmt.Errorf("%s: %w%s", op, runErr, stderrSuffix(stderr.String()))
	}
	return &resp, nil
}

func stderrSuffix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return ": " + s
}

// Runner hosts a downstream entry script inside the auth library's runtime,
// with the library's client constructor bound to one session. The
// downstream then authenticates as that session's identity without
// re-prompting.
type Runner struct {
	bridge  *Bridge
	session *Session
}

// Bind returns a Runner for s.
func (b *Bridge) Bind(s *Session) *Runner {
	return &Runner{bridge: b, session: s}
}

// Invoke runs `<helper> run <argv...>` with stdio inherited and the session
// written to descriptor 3. env is the complete child environment. A
// non-zero exit surfaces as *exec.ExitError.
func (r *Runner) Invoke(ctx context.Context, argv []string, env []string) error {
	b := r.bridge
	if err := b.Available(); err != nil {
		return err
	}

	args := append(append(append([]string(nil), b.args...), OpRun), argv...)
	cmd, err := b.builder.Build(b.path, args...)
	if err != nil {
		return err
	}
	// The downstream sync runs for as long as it needs.
	cmd.WithTimeout(0)
	runCtx, cancel := cmd.Context(ctx)
	defer cancel()

	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create session pipe: %w", err)
	}
	defer reader.Close()

	c := cmd.Exec(runCtx)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = env
	c.ExtraFiles = []*os.File{reader} // becomes fd 3 in child

	if err := c.Start(); err != nil {
		writer.Close()
		return err
	}
	reader.Close()

	payload, _ := json.Marshal(request{Username: r.session.Username, Session: r.session.Material})
	_, writeErr := writer.Write(payload)
	writer.Close()

	waitErr := c.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			return exitErr
		}
		return waitErr
	}
	if writeErr != nil {
		return fmt.Errorf("write session to runner: %w", writeErr)
	}
	return nil
}
