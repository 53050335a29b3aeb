package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/gate"
	"github.com/grovetools/syncgate/logging"
	"github.com/grovetools/syncgate/prompt"
	"github.com/grovetools/syncgate/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helper = `
op="$1"
shift
if [ "$op" = run ]; then
  exit 0
fi
input=$(cat)
case "$op" in
  resume)
    if [ -f "$FAKE_STATE" ]; then
      printf '{"ok":true,"session":"%s"}\n' "$(cat "$FAKE_STATE")"
    else
      echo '{"ok":false,"error":"no saved session"}'
    fi ;;
  probe)
    case "$input" in
      *tok-live*) echo '{"ok":true,"username":"alice@example.com"}' ;;
      *) echo '{"ok":false,"error":"401 Unauthorized"}' ;;
    esac ;;
  login) echo '{"ok":true,"session":"tok-live","username":"alice@example.com"}' ;;
  save)
    printf 'tok-live' > "$FAKE_STATE"
    echo '{"ok":true}' ;;
esac
`

func setupHome(t *testing.T) string {
	t.Helper()
	home := testutil.IsolateHome(t)
	bin := filepath.Join(home, "bin")
	testutil.WriteExecutable(t, bin, "garth-bridge", helper)
	testutil.WriteExecutable(t, bin, "garmindb_cli.py", "exit 0\n")
	testutil.OnlyPath(t, bin)
	t.Setenv("FAKE_STATE", filepath.Join(home, "fake-state"))
	logging.Reset()
	t.Cleanup(logging.Reset)
	return home
}

func execute(t *testing.T, opts gate.Options, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return out.String(), err
}

func TestPathsPrintsLayout(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, gate.Options{}, "paths")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, filepath.Join(home, ".GarminDb"), got["base_dir"])
	assert.Equal(t, filepath.Join(home, ".GarminDb", "garth_session"), got["session_dir"])
	assert.Equal(t, filepath.Join(home, ".GarminDb", "GarminConnectConfig.json"), got["config_document"])
	assert.Equal(t, filepath.Join(home, ".syncgate", "config", "syncgate"), got["syncgate_config_dir"])
}

func TestPathsHonoursBaseDirOverride(t *testing.T) {
	home := setupHome(t)
	t.Setenv("SYNCGATE_BASE_DIR", filepath.Join(home, "garmin"))

	out, err := execute(t, gate.Options{}, "paths")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, "garmin", "garth_session"))
}

func TestConfigPrintsEffectiveYAML(t *testing.T) {
	setupHome(t)
	t.Setenv("SYNCGATE_HANDOFF_MODE", "INJECT")

	out, err := execute(t, gate.Options{}, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "target: garmindb_cli.py")
	assert.Contains(t, out, "mode: inject")
}

func TestConfigRejectsMissingExplicitFile(t *testing.T) {
	setupHome(t)

	_, err := execute(t, gate.Options{}, "config", "--config", "/nonexistent/syncgate.yml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestStatusWithoutSession(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, gate.Options{}, "status", "--json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionInvalid))
	assert.Equal(t, 1, errors.ExitCode(err))

	var got StatusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, "no saved session", got.Reason)
	assert.Equal(t, filepath.Join(home, ".GarminDb", "garth_session"), got.SessionDir)
}

func TestStatusWithLiveSession(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".GarminDb", "garth_session"), 0o700))
	testutil.WriteFile(t, filepath.Join(home, "fake-state"), "tok-live")
	t.Setenv("NO_COLOR", "1")

	out, err := execute(t, gate.Options{}, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Session is valid")
	assert.Contains(t, out, "alice@example.com")
}

func TestStatusNeedsAuthHelper(t *testing.T) {
	home := setupHome(t)
	testutil.OnlyPath(t, filepath.Join(home, "empty"))

	_, err := execute(t, gate.Options{}, "status")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAuthLibraryMissing))
}

func TestRootForwardsArgsUnparsed(t *testing.T) {
	home := setupHome(t)

	var prompts, logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	var argv []string
	opts := gate.Options{
		Prompter: prompt.New(strings.NewReader("alice@example.com\ns3cret\n"), &prompts),
		Exec: func(path string, a []string, env []string) error {
			argv = a
			return nil
		},
		Logger: logrus.NewEntry(logger),
	}

	_, err := execute(t, opts, "--all", "-v", "--download", "--latest")
	assert.True(t, errors.Is(err, errors.ErrCodeHandoffFailed))

	assert.Equal(t, []string{"garmindb_cli.py", "--all", "-v", "--download", "--latest"}, argv)
	assert.Equal(t, "Username:\nPassword:\n", prompts.String())
	assert.DirExists(t, filepath.Join(home, ".GarminDb", "garth_session"))
}

func TestVersionJSON(t *testing.T) {
	setupHome(t)

	out, err := execute(t, gate.Options{}, "version", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got["version"])
}
