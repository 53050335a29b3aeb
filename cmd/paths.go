package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/syncgate/cli"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists every filesystem location syncgate reads or writes.
type PathsOutput struct {
	paths.Layout
	SyncgateConfigDir string `json:"syncgate_config_dir"`
	SyncgateStateDir  string `json:"syncgate_state_dir"`
	LogsDir           string `json:"logs_dir"`
}

func newPathsCmd() *cobra.Command {
	cmd := cli.NewStandardCommand("paths", "Print the filesystem layout used by syncgate")
	cmd.Long = `Print the filesystem layout used by syncgate as JSON.

- base_dir: the sync tool's data directory
- session_dir: where the auth library keeps its session
- config_document: the sync tool's JSON configuration (credentials)
- syncgate_config_dir: where syncgate.yml is searched
- syncgate_state_dir, logs_dir: syncgate's own state and log files`
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return err
		}
		layout, err := cfg.Layout()
		if err != nil {
			return err
		}

		output := PathsOutput{
			Layout:            layout,
			SyncgateConfigDir: paths.ConfigDir(),
			SyncgateStateDir:  paths.StateDir(),
			LogsDir:           paths.LogsDir(),
		}
		jsonData, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal paths to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	}
	return cmd
}
