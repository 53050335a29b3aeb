package config

const (
	DefaultVersion        = "1.0"
	DefaultAuthHelper     = "garth-bridge"
	DefaultTarget         = "garmindb_cli.py"
	DefaultConfigFlag     = "-f"
	DefaultFallbackScript = "/usr/local/bin/garmindb_cli.py"
)

// DefaultConfigFlagAliases are the long spellings GarminDB accepts for -f.
var DefaultConfigFlagAliases = []string{"--config"}

// Default returns a configuration reproducing the stock GarminDB layout.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Auth.Helper == "" {
		c.Auth.Helper = DefaultAuthHelper
	}
	if c.Handoff.Mode == "" {
		c.Handoff.Mode = ModeReplace
	}
	if c.Handoff.Target == "" {
		c.Handoff.Target = DefaultTarget
	}
	if c.Handoff.ConfigFlag == "" {
		c.Handoff.ConfigFlag = DefaultConfigFlag
	}
	if c.Handoff.ConfigFlagAliases == nil {
		c.Handoff.ConfigFlagAliases = append([]string(nil), DefaultConfigFlagAliases...)
	}
	if c.Handoff.FallbackScript == "" {
		c.Handoff.FallbackScript = DefaultFallbackScript
	}
}
