package handoff

import (
	"testing"

	"github.com/grovetools/syncgate/auth"
	"github.com/stretchr/testify/assert"
)

var configFlag = []string{"-f", "--config"}

func TestHasFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", nil, false},
		{"separate value", []string{"-f", "/c.json", "--all"}, true},
		{"attached value", []string{"--all", "-f/c.json"}, true},
		{"short equals", []string{"-f=/c.json"}, true},
		{"long alias", []string{"--config", "/c.json"}, true},
		{"long alias equals", []string{"--all", "--config=/c.json"}, true},
		{"after unknown flags", []string{"--all", "--download", "--latest", "-f", "/c.json"}, true},
		{"after unknown flag with value", []string{"--days", "7", "--config", "/c.json"}, true},
		{"after positional", []string{"sync", "-f", "/c.json"}, true},
		{"only after terminator", []string{"--all", "--", "-f", "/c.json"}, false},
		{"similar long flag", []string{"--configure", "x"}, false},
		{"help does not confuse", []string{"-h"}, false},
		{"long help", []string{"--help", "-f", "x"}, true},
		{"value that looks like flag name", []string{"--label", "-f"}, true},
		{"trailing flag without value", []string{"--all", "-f"}, true},
		{"unrelated flags", []string{"--all", "--download", "--import", "--analyze"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasFlag(tt.args, configFlag))
		})
	}
}

func TestInject(t *testing.T) {
	inj := Injection{Flag: "-f", Aliases: []string{"--config"}, Value: "/home/a/.GarminDb/GarminConnectConfig.json"}

	t.Run("prepends when absent", func(t *testing.T) {
		args := []string{"--all", "--download"}
		got := Inject(args, inj)
		assert.Equal(t, []string{"-f", inj.Value, "--all", "--download"}, got)
		assert.Equal(t, []string{"--all", "--download"}, args, "input must not change")
	})

	t.Run("caller value wins", func(t *testing.T) {
		args := []string{"--config=/mine.json", "--all"}
		assert.Equal(t, args, Inject(args, inj))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Inject([]string{"--all"}, inj)
		assert.Equal(t, once, Inject(once, inj))
	})

	t.Run("empty args", func(t *testing.T) {
		assert.Equal(t, []string{"-f", inj.Value}, Inject(nil, inj))
	})
}

func TestBuildArgv(t *testing.T) {
	assert.Equal(t, []string{"garmindb_cli.py", "--all"}, BuildArgv("garmindb_cli.py", []string{"--all"}))
	assert.Equal(t, []string{"garmindb_cli.py"}, BuildArgv("garmindb_cli.py", nil))
}

func TestEnvironment(t *testing.T) {
	base := []string{"PATH=/bin", "SYNCGATE_USERNAME=stale", "HOME=/h"}
	req := Request{Session: &auth.Session{Username: "alice"}, SessionDir: "/h/.GarminDb/garth_session"}

	env := Environment(base, req)
	assert.Equal(t, []string{
		"PATH=/bin",
		"HOME=/h",
		"SYNCGATE_USERNAME=alice",
		"SYNCGATE_SESSION_DIR=/h/.GarminDb/garth_session",
	}, env)
}
