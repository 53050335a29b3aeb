package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// syncgateEnv lists every variable that changes syncgate's behaviour.
var syncgateEnv = []string{
	"SYNCGATE_CONFIG",
	"SYNCGATE_BASE_DIR",
	"SYNCGATE_HANDOFF_MODE",
	"SYNCGATE_TARGET",
	"SYNCGATE_ENTRY_SCRIPT",
	"SYNCGATE_AUTH_HELPER",
	"SYNCGATE_LOG_LEVEL",
	"SYNCGATE_LOG_CALLER",
	"SYNCGATE_DEBUG",
	"SYNCGATE_USERNAME",
	"SYNCGATE_SESSION_DIR",
}

// IsolateHome points HOME and SYNCGATE_HOME at a fresh temp directory and
// clears every SYNCGATE_* override. It returns the new home.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SYNCGATE_HOME", filepath.Join(home, ".syncgate"))
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	for _, name := range syncgateEnv {
		t.Setenv(name, "")
	}
	return home
}

// WriteExecutable writes a /bin/sh script named name into dir and returns
// its path. body is everything after the shebang line.
func WriteExecutable(t *testing.T, dir, name, body string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + strings.TrimLeft(body, "\n")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// PrependPath puts dirs in front of PATH for the duration of the test.
func PrependPath(t *testing.T, dirs ...string) {
	t.Helper()

	parts := append(append([]string(nil), dirs...), os.Getenv("PATH"))
	t.Setenv("PATH", strings.Join(parts, string(os.PathListSeparator)))
}

// OnlyPath replaces PATH with dirs, hiding every system binary except
// the shell the fake scripts need.
func OnlyPath(t *testing.T, dirs ...string) {
	t.Helper()

	parts := append(append([]string(nil), dirs...), "/bin", "/usr/bin")
	t.Setenv("PATH", strings.Join(parts, string(os.PathListSeparator)))
}

// ReadFile reads path and fails the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
