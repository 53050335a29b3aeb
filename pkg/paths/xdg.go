// Package paths provides the filesystem layout used by syncgate.
//
// Two families of paths live here:
//
//  1. The downstream layout shared with the sync tool: a base directory
//     (~/.GarminDb by default) holding the session subdirectory and the
//     JSON configuration document the tool reads its credentials from.
//  2. syncgate's own XDG directories for its config file and logs.
//
// Resolution order for the XDG directories:
// 1. SYNCGATE_HOME (portable root) → $SYNCGATE_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/syncgate
// 3. Platform defaults → ~/.config/syncgate, ~/.local/state/syncgate
package paths

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDirName is the downstream tool's data directory under $HOME.
	DefaultBaseDirName = ".GarminDb"
	// DefaultSessionDirName is the auth library's session directory inside the base dir.
	DefaultSessionDirName = "garth_session"
	// DefaultConfigDocumentName is the downstream tool's JSON configuration.
	DefaultConfigDocumentName = "GarminConnectConfig.json"

	appName = "syncgate"
)

// Layout is the resolved downstream filesystem layout.
type Layout struct {
	BaseDir        string `json:"base_dir"`
	SessionDir     string `json:"session_dir"`
	ConfigDocument string `json:"config_document"`
}

// DefaultBaseDir returns ~/.GarminDb, or "" when the home directory is unknown.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultBaseDirName)
}

// NewLayout resolves a layout. Relative session and document names are
// joined onto baseDir; absolute ones are kept as given.
func NewLayout(baseDir, sessionDir, configDocument string) Layout {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}
	if sessionDir == "" {
		sessionDir = DefaultSessionDirName
	}
	if configDocument == "" {
		configDocument = DefaultConfigDocumentName
	}
	return Layout{
		BaseDir:        baseDir,
		SessionDir:     under(baseDir, sessionDir),
		ConfigDocument: under(baseDir, configDocument),
	}
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if home := os.Getenv("SYNCGATE_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if home := os.Getenv("SYNCGATE_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the syncgate configuration directory.
// Used for syncgate.yml / syncgate.toml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// StateDir returns the syncgate state directory.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// LogsDir returns the directory for the default log file sink.
func LogsDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}
