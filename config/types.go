package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

//go:generate go run ../tools/schema-generator/

// HandoffMode selects how control is transferred to the downstream tool.
type HandoffMode string

const (
	// ModeReplace replaces the syncgate process image with the target.
	ModeReplace HandoffMode = "replace"
	// ModeInject execs the target after ensuring the config-file flag is present.
	ModeInject HandoffMode = "inject"
	// ModeInProcess runs the target entry script inside the auth runtime,
	// bound to the already-authenticated session.
	ModeInProcess HandoffMode = "inprocess"
)

// Modes lists every accepted handoff mode.
var Modes = []HandoffMode{ModeReplace, ModeInject, ModeInProcess}

// Config is syncgate's own configuration (syncgate.yml / syncgate.toml).
// It is distinct from the downstream JSON document that receives the
// credential record.
type Config struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`

	// BaseDir is the downstream tool's data directory. Defaults to ~/.GarminDb.
	BaseDir string `yaml:"base_dir,omitempty" json:"base_dir,omitempty" jsonschema:"description=Downstream data directory holding the session and credential document"`

	// SessionDir is joined onto BaseDir unless absolute.
	SessionDir string `yaml:"session_dir,omitempty" json:"session_dir,omitempty" jsonschema:"description=Auth session directory (relative to base_dir unless absolute)"`

	// ConfigDocument is joined onto BaseDir unless absolute.
	ConfigDocument string `yaml:"config_document,omitempty" json:"config_document,omitempty" jsonschema:"description=Downstream JSON configuration file receiving credentials (relative to base_dir unless absolute)"`

	Auth    AuthConfig    `yaml:"auth,omitempty" json:"auth,omitempty" jsonschema:"description=Auth library helper settings"`
	Handoff HandoffConfig `yaml:"handoff,omitempty" json:"handoff,omitempty" jsonschema:"description=How control is transferred to the downstream tool"`

	// Extensions captures all other top-level keys (e.g. logging).
	Extensions map[string]interface{} `yaml:",inline" json:"-" jsonschema:"-"`
}

// AuthConfig configures the helper process that fronts the auth library.
type AuthConfig struct {
	Helper  string   `yaml:"helper,omitempty" json:"helper,omitempty" jsonschema:"description=Auth helper executable name or path"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty" jsonschema:"description=Extra arguments placed before the operation name"`
	Timeout string   `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"description=Per-call timeout for resume/login/save (Go duration; empty means unbounded)"`
}

// HandoffConfig configures the handoff strategy.
type HandoffConfig struct {
	Mode              HandoffMode `yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"description=Handoff strategy,enum=replace,enum=inject,enum=inprocess"`
	Target            string      `yaml:"target,omitempty" json:"target,omitempty" jsonschema:"description=Downstream executable name or path"`
	ConfigFlag        string      `yaml:"config_flag,omitempty" json:"config_flag,omitempty" jsonschema:"description=Flag used to pass the configuration document path"`
	ConfigFlagAliases []string    `yaml:"config_flag_aliases,omitempty" json:"config_flag_aliases,omitempty" jsonschema:"description=Equivalent spellings of config_flag that suppress injection"`
	Spawn             bool        `yaml:"spawn,omitempty" json:"spawn,omitempty" jsonschema:"description=In inject mode: spawn and wait instead of replacing the process"`
	EntryScript       string      `yaml:"entry_script,omitempty" json:"entry_script,omitempty" jsonschema:"description=In inprocess mode: explicit path to the downstream entry script"`
	FallbackScript    string      `yaml:"fallback_script,omitempty" json:"fallback_script,omitempty" jsonschema:"description=In inprocess mode: entry script used when entry_script is unset or missing"`
}

// InjectsConfigFlag reports whether the mode rewrites argv with the config flag.
func (h HandoffConfig) InjectsConfigFlag() bool {
	return h.Mode == ModeInject || h.Mode == ModeInProcess
}

// AuthTimeout parses Auth.Timeout. Zero means unbounded.
func (c *Config) AuthTimeout() (time.Duration, error) {
	if c.Auth.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Auth.Timeout)
	if err != nil {
		return 0, fmt.Errorf("auth.timeout: %w", err)
	}
	return d, nil
}

// UnmarshalExtension decodes a top-level extension section into target.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
