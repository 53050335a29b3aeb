package prompt

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/grovetools/syncgate/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantUser  string
		wantPass  string
		wantErr   bool
		wantField string
		wantOut   string
	}{
		{
			name:     "both answered",
			input:    "alice@example.com\ns3cret\n",
			wantUser: "alice@example.com",
			wantPass: "s3cret",
			wantOut:  "Username:\nPassword:\n",
		},
		{
			name:     "answers are trimmed",
			input:    "  alice \r\n\tpw with space \n",
			wantUser: "alice",
			wantPass: "pw with space",
			wantOut:  "Username:\nPassword:\n",
		},
		{
			name:     "password at EOF without newline",
			input:    "alice\npw",
			wantUser: "alice",
			wantPass: "pw",
			wantOut:  "Username:\nPassword:\n",
		},
		{
			name:      "empty username stops before password",
			input:     "\nignored\n",
			wantErr:   true,
			wantField: "username",
			wantOut:   "Username:\n",
		},
		{
			name:      "whitespace password",
			input:     "alice\n   \n",
			wantErr:   true,
			wantField: "password",
			wantOut:   "Username:\nPassword:\n",
		},
		{
			name:      "closed stdin",
			input:     "",
			wantErr:   true,
			wantField: "username",
			wantOut:   "Username:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(tt.input), &out)

			user, pass, err := p.Credentials()
			assert.Equal(t, tt.wantOut, out.String())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
				gateErr, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantField, gateErr.Details["field"])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantPass, pass)
		})
	}
}

func TestMFACode(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("123456\n"), &out)

	code, err := p.MFACode()
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, "MFA code:\n", out.String())

	_, err = New(strings.NewReader("\n"), io.Discard).MFACode()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

// relay answers each prompt only after seeing it, the way a parent
// process driving syncgate over pipes does.
func TestPromptsAreFlushedBeforeReading(t *testing.T) {
	promptR, promptW := io.Pipe()
	answerR, answerW := io.Pipe()

	w := bufio.NewWriter(promptW)
	p := New(answerR, w)

	done := make(chan error, 1)
	go func() {
		_, _, err := p.Credentials()
		done <- err
		promptW.Close()
	}()

	scanner := bufio.NewScanner(promptR)
	answers := map[string]string{UsernamePrompt: "alice\n", PasswordPrompt: "pw\n"}
	var seen []string
	for scanner.Scan() {
		line := scanner.Text()
		seen = append(seen, line)
		if answer, ok := answers[line]; ok {
			_, err := io.WriteString(answerW, answer)
			require.NoError(t, err)
		}
	}

	require.NoError(t, <-done)
	assert.Equal(t, []string{UsernamePrompt, PasswordPrompt}, seen)
}

func TestSecretReaderUsedForPasswordOnly(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("alice\n"), &out)
	calls := 0
	p.readSecret = func() (string, error) {
		calls++
		return "typed-without-echo", nil
	}

	user, pass, err := p.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "typed-without-echo", pass)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Username:\nPassword:\n", out.String())
}
