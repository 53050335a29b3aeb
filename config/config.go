package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/grovetools/syncgate/util/pathutil"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched, in order, inside the syncgate config directory.
var configNames = []string{
	"syncgate.yml",
	"syncgate.yaml",
	"syncgate.toml",
}

// Load reads and parses a syncgate configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, formatFor(path))
	if err != nil {
		if gateErr, ok := errors.As(err); ok {
			return nil, gateErr.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefault finds and loads the configuration. A missing file is not an
// error: the built-in defaults describe the stock GarminDB layout.
func LoadDefault() (*Config, error) {
	return LoadWithLogger("", logrus.New())
}

// LoadWithLogger loads explicitPath when given (it must exist), otherwise
// searches SYNCGATE_CONFIG and the XDG config directory. Override files
// next to the loaded file and SYNCGATE_* environment variables are layered
// on top before defaults and validation.
func LoadWithLogger(explicitPath string, logger *logrus.Logger) (*Config, error) {
	path := explicitPath
	if path == "" {
		found, err := FindConfigFile()
		if err != nil && !errors.Is(err, errors.ErrCodeConfigNotFound) {
			return nil, err
		}
		path = found
	}

	var cfg *Config
	if path == "" {
		logger.Debug("No syncgate config file found, using defaults")
		cfg = &Config{}
	} else {
		logger.WithField("path", path).Debug("Loading configuration")
		loaded, err := LoadWithOverrides(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Effective configuration:\n%s", string(data))
		}
	}
	return cfg, nil
}

// LoadFromBytes parses configuration in the given format ("yaml" or "toml")
// and checks the raw document against the embedded schema before decoding
// it, so misspelled keys are rejected rather than dropped. Defaults are not
// applied.
func LoadFromBytes(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var raw map[string]interface{}
	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		// TOML has no inline-map equivalent, so route through YAML to
		// keep unknown sections in Extensions.
		bridged, err := yaml.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to convert TOML configuration")
		}
		expanded = bridged
	default:
		if err := yaml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}
	return &cfg, nil
}

// FindConfigFile returns SYNCGATE_CONFIG when set, otherwise the first
// syncgate.{yml,yaml,toml} in the XDG config directory.
func FindConfigFile() (string, error) {
	if envPath := os.Getenv("SYNCGATE_CONFIG"); envPath != "" {
		expanded, err := pathutil.Expand(envPath)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to expand SYNCGATE_CONFIG")
		}
		return expanded, nil
	}

	dir := paths.ConfigDir()
	if dir != "" {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	return "", errors.ConfigNotFound(dir).WithDetail("searchPath", dir)
}

// Layout resolves the downstream filesystem layout from the configuration.
func (c *Config) Layout() (paths.Layout, error) {
	base, err := pathutil.Expand(c.BaseDir)
	if err != nil {
		return paths.Layout{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to expand base_dir")
	}
	return paths.NewLayout(base, expandHome(c.SessionDir), expandHome(c.ConfigDocument)), nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if expanded, err := pathutil.Expand(p); err == nil {
			return expanded
		}
	}
	return p
}

// applyEnvOverrides layers SYNCGATE_* variables over file values.
func applyEnvOverrides(c *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"SYNCGATE_BASE_DIR", &c.BaseDir},
		{"SYNCGATE_TARGET", &c.Handoff.Target},
		{"SYNCGATE_ENTRY_SCRIPT", &c.Handoff.EntryScript},
		{"SYNCGATE_AUTH_HELPER", &c.Auth.Helper},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
	if v := os.Getenv("SYNCGATE_HANDOFF_MODE"); v != "" {
		c.Handoff.Mode = HandoffMode(strings.ToLower(v))
	}
}

// formatFor picks the parser from the file extension.
func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
