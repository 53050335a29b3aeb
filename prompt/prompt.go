// Package prompt implements the credential prompt wire protocol. Prompts
// are written to stdout one per line and flushed immediately, so a parent
// process relaying them can match the exact text and answer on stdin.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/syncgate/errors"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Prompt text is part of the wire contract with relaying parents.
const (
	UsernamePrompt = "Username:"
	PasswordPrompt = "Password:"
	MFAPrompt      = "MFA code:"
)

type flusher interface {
	Flush() error
}

// Prompter asks for credentials over a line-oriented stream pair.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads a line without echo; nil means read a plain line.
	readSecret func() (string, error)
}

// New creates a Prompter reading answers from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// NewStdio creates a Prompter on the process's stdin and stdout. When stdin
// is a terminal, the password is read without echo.
func NewStdio() *Prompter {
	p := New(os.Stdin, os.Stdout)
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(int(fd))
			fmt.Fprintln(p.out)
			return string(b), err
		}
	}
	return p
}

// Credentials prompts for a username, then a password. An empty answer to
// either is INVALID_INPUT and stops the exchange.
func (p *Prompter) Credentials() (username, password string, err error) {
	username, err = p.ask(UsernamePrompt, "username", false)
	if err != nil {
		return "", "", err
	}
	password, err = p.ask(PasswordPrompt, "password", true)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// MFACode prompts for a second-factor code.
func (p *Prompter) MFACode() (string, error) {
	return p.ask(MFAPrompt, "MFA code", false)
}

func (p *Prompter) ask(prompt, field string, secret bool) (string, error) {
	if _, err := fmt.Fprintln(p.out, prompt); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to write prompt")
	}
	p.flush()

	var (
		answer string
		err    error
	)
	if secret && p.readSecret != nil {
		answer, err = p.readSecret()
	} else {
		answer, err = p.readLine()
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("failed to read %s", field))
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.EmptyInput(field)
	}
	return answer, nil
}

// readLine returns one line. Content before EOF counts as a line; EOF
// with nothing read is an empty answer.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err == io.EOF {
		return line, nil
	}
	return line, err
}

func (p *Prompter) flush() {
	switch w := p.out.(type) {
	case flusher:
		_ = w.Flush()
	case *os.File:
		if info, err := w.Stat(); err == nil && info.Mode().IsRegular() {
			_ = w.Sync()
		}
	}
}
