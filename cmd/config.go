package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/syncgate/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := cli.NewStandardCommand("config", "Display the effective configuration")
	cmd.Long = `Display the effective configuration after defaults, override files and
SYNCGATE_* environment overrides have been applied.`
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return err
		}

		if cli.GetOptions(cmd).JSONOutput {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}
	return cmd
}
