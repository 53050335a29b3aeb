package config

import (
	"fmt"
	"strings"

	"github.com/grovetools/syncgate/errors"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !validMode(c.Handoff.Mode) {
		return errors.ConfigInvalid(fmt.Sprintf("handoff.mode must be one of %s, got %q", modeList(), c.Handoff.Mode)).
			WithDetail("mode", string(c.Handoff.Mode))
	}

	if strings.TrimSpace(c.Handoff.Target) == "" {
		return errors.ConfigInvalid("handoff.target cannot be empty")
	}

	if err := validateFlag("handoff.config_flag", c.Handoff.ConfigFlag); err != nil {
		return err
	}
	for _, alias := range c.Handoff.ConfigFlagAliases {
		if err := validateFlag("handoff.config_flag_aliases", alias); err != nil {
			return err
		}
	}

	if strings.TrimSpace(c.Auth.Helper) == "" {
		return errors.ConfigInvalid("auth.helper cannot be empty")
	}

	if _, err := c.AuthTimeout(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid auth.timeout").
			WithDetail("timeout", c.Auth.Timeout)
	}

	return nil
}

func validMode(m HandoffMode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

func modeList() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// validateFlag accepts "-x" or "--name" spellings only.
func validateFlag(field, flag string) error {
	switch {
	case strings.HasPrefix(flag, "--") && len(flag) > 2 && !strings.ContainsAny(flag, "= "):
		return nil
	case strings.HasPrefix(flag, "-") && len(flag) == 2 && flag[1] != '-':
		return nil
	}
	return errors.ConfigInvalid(fmt.Sprintf("%s must look like -x or --name, got %q", field, flag)).
		WithDetail("field", field)
}
