package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/syncgate/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// isolate points every lookup at a fresh temp tree.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("SYNCGATE_HOME", filepath.Join(root, "sg"))
	for _, env := range []string{
		"SYNCGATE_CONFIG", "SYNCGATE_BASE_DIR", "SYNCGATE_TARGET",
		"SYNCGATE_ENTRY_SCRIPT", "SYNCGATE_AUTH_HELPER", "SYNCGATE_HANDOFF_MODE",
	} {
		t.Setenv(env, "")
	}
	return root
}

func TestLoadDefaultWithoutFile(t *testing.T) {
	root := isolate(t)

	cfg, err := LoadWithLogger("", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, ModeReplace, cfg.Handoff.Mode)
	assert.Equal(t, DefaultTarget, cfg.Handoff.Target)
	assert.Equal(t, "-f", cfg.Handoff.ConfigFlag)
	assert.Equal(t, []string{"--config"}, cfg.Handoff.ConfigFlagAliases)
	assert.Equal(t, DefaultAuthHelper, cfg.Auth.Helper)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".GarminDb"), layout.BaseDir)
	assert.Equal(t, filepath.Join(root, ".GarminDb", "garth_session"), layout.SessionDir)
	assert.Equal(t, filepath.Join(root, ".GarminDb", "GarminConnectConfig.json"), layout.ConfigDocument)
}

func TestLoadYAMLWithEnvExpansion(t *testing.T) {
	root := isolate(t)
	t.Setenv("GDB_DATA", "/srv/gdb")

	path := filepath.Join(root, "sg", "config", "syncgate", "syncgate.yml")
	writeFile(t, path, `
version: "1.0"
base_dir: ${GDB_DATA}
session_dir: ${GDB_SESSION:-tokens}
handoff:
  mode: inject
  target: /opt/gdb/garmindb_cli.py
  spawn: true
logging:
  level: debug
`)

	cfg, err := LoadWithLogger("", quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "/srv/gdb", cfg.BaseDir)
	assert.Equal(t, "tokens", cfg.SessionDir)
	assert.Equal(t, ModeInject, cfg.Handoff.Mode)
	assert.True(t, cfg.Handoff.Spawn)
	assert.True(t, cfg.Handoff.InjectsConfigFlag())

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
}

func TestLoadTOML(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "custom.toml")
	writeFile(t, path, `
base_dir = "/data/garmin"

[auth]
helper = "/opt/bridge/garth-bridge"
timeout = "45s"

[handoff]
mode = "inprocess"
entry_script = "/opt/gdb/scripts/garmindb_cli.py"

[logging]
level = "warn"
`)

	cfg, err := LoadWithLogger(path, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, ModeInProcess, cfg.Handoff.Mode)
	assert.Equal(t, "/opt/gdb/scripts/garmindb_cli.py", cfg.Handoff.EntryScript)
	assert.Equal(t, "/opt/bridge/garth-bridge", cfg.Auth.Helper)
	timeout, err := cfg.AuthTimeout()
	require.NoError(t, err)
	assert.Equal(t, "45s", timeout.String())
	assert.Contains(t, cfg.Extensions, "logging")
}

func TestExplicitPathMustExist(t *testing.T) {
	root := isolate(t)

	_, err := LoadWithLogger(filepath.Join(root, "missing.yml"), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestSyncgateConfigEnv(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "elsewhere.yml")
	writeFile(t, path, "handoff:\n  target: other_cli\n")
	t.Setenv("SYNCGATE_CONFIG", path)

	found, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, path, found)

	cfg, err := LoadWithLogger("", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "other_cli", cfg.Handoff.Target)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "c.yml")
	writeFile(t, path, "handoff:\n  mode: replace\n  target: a\n")
	t.Setenv("SYNCGATE_HANDOFF_MODE", "INPROCESS")
	t.Setenv("SYNCGATE_TARGET", "b")
	t.Setenv("SYNCGATE_BASE_DIR", "/env/base")

	cfg, err := LoadWithLogger(path, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ModeInProcess, cfg.Handoff.Mode)
	assert.Equal(t, "b", cfg.Handoff.Target)
	assert.Equal(t, "/env/base", cfg.BaseDir)
}

func TestOverrideFileMerges(t *testing.T) {
	root := isolate(t)
	dir := filepath.Join(root, "cfg")
	writeFile(t, filepath.Join(dir, "syncgate.yml"), `
handoff:
  mode: inject
  target: garmindb_cli.py
logging:
  level: info
  report_caller: true
`)
	writeFile(t, filepath.Join(dir, "syncgate.override.yml"), `
handoff:
  spawn: true
logging:
  level: debug
`)

	cfg, err := LoadWithLogger(filepath.Join(dir, "syncgate.yml"), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ModeInject, cfg.Handoff.Mode)
	assert.True(t, cfg.Handoff.Spawn)

	logging, ok := cfg.Extensions["logging"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "debug", logging["level"])
	assert.Equal(t, true, logging["report_caller"])
}

func TestSchemaRejectsUnknownHandoffKeys(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{name: "bad mode", data: "handoff:\n  mode: teleport\n", format: "yaml"},
		{name: "misspelled handoff key", data: "handoff:\n  targt: typo\n", format: "yaml"},
		{name: "misspelled auth key", data: "auth:\n  helpr: garth-bridge\n", format: "yaml"},
		{name: "misspelled toml key", data: "[handoff]\ntargt = \"typo\"\n", format: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
		})
	}
}

func TestEmptyDocumentIsValid(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(""), "yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Handoff.Target)
}

func TestMalformedYAML(t *testing.T) {
	_, err := LoadFromBytes([]byte("handoff: [unclosed"), "yaml")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}
