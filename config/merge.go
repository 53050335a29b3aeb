package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadWithOverrides loads configuration with override files
func LoadWithOverrides(baseFile string) (*Config, error) {
	config, err := Load(baseFile)
	if err != nil {
		return nil, err
	}

	// Look for override files next to the base file
	dir := filepath.Dir(baseFile)
	overrides := []string{
		filepath.Join(dir, "syncgate.override.yml"),
		filepath.Join(dir, "syncgate.override.yaml"),
		filepath.Join(dir, "syncgate.override.toml"),
	}

	for _, overrideFile := range overrides {
		if _, err := os.Stat(overrideFile); err != nil {
			continue
		}
		data, err := os.ReadFile(overrideFile)
		if err != nil {
			return nil, fmt.Errorf("read override %s: %w", overrideFile, err)
		}
		override, err := LoadFromBytes(data, formatFor(overrideFile))
		if err != nil {
			return nil, fmt.Errorf("parse override %s: %w", overrideFile, err)
		}
		config = mergeConfigs(config, override)
	}

	return config, nil
}

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.BaseDir != "" {
		result.BaseDir = override.BaseDir
	}
	if override.SessionDir != "" {
		result.SessionDir = override.SessionDir
	}
	if override.ConfigDocument != "" {
		result.ConfigDocument = override.ConfigDocument
	}

	result.Auth = mergeAuth(result.Auth, override.Auth)
	result.Handoff = mergeHandoff(result.Handoff, override.Handoff)

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{})
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			// Otherwise just replace
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeAuth(base, override AuthConfig) AuthConfig {
	result := base
	if override.Helper != "" {
		result.Helper = override.Helper
	}
	if len(override.Args) > 0 {
		result.Args = override.Args
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	return result
}

func mergeHandoff(base, override HandoffConfig) HandoffConfig {
	result := base
	if override.Mode != "" {
		result.Mode = HandoffMode(strings.ToLower(string(override.Mode)))
	}
	if override.Target != "" {
		result.Target = override.Target
	}
	if override.ConfigFlag != "" {
		result.ConfigFlag = override.ConfigFlag
	}
	if len(override.ConfigFlagAliases) > 0 {
		result.ConfigFlagAliases = override.ConfigFlagAliases
	}
	if override.Spawn {
		result.Spawn = override.Spawn
	}
	if override.EntryScript != "" {
		result.EntryScript = override.EntryScript
	}
	if override.FallbackScript != "" {
		result.FallbackScript = override.FallbackScript
	}
	return result
}
