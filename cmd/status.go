package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/syncgate/cli"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/gate"
	"github.com/grovetools/syncgate/logging"
	"github.com/spf13/cobra"
)

// StatusOutput is the --json form of `syncgate status`.
type StatusOutput struct {
	Valid      bool   `json:"valid"`
	Username   string `json:"username,omitempty"`
	SessionDir string `json:"session_dir"`
	Reason     string `json:"reason,omitempty"`
}

func newStatusCmd(opts gate.Options) *cobra.Command {
	cmd := cli.NewStandardCommand("status", "Check whether the saved session is still usable")
	cmd.Long = `Check whether the saved session is still usable.

Only the saved session is inspected: status never prompts, never logs in and
never launches the sync tool. It exits 0 when the session is live and 1
otherwise.`
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return err
		}
		o := opts
		o.Logger = cli.GetLogger(cmd)

		components, err := gate.Build(cfg, o)
		if err != nil {
			return err
		}

		out := StatusOutput{SessionDir: components.Layout.SessionDir}
		session, checkErr := components.Resolver.Check(cmd.Context())
		if checkErr == nil {
			out.Valid = true
			out.Username = session.Username
		} else if gateErr, ok := errors.As(checkErr); ok {
			out.Reason = gateErr.Message
		} else {
			out.Reason = checkErr.Error()
		}

		if cli.GetOptions(cmd).JSONOutput {
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal status to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			if out.Valid {
				pretty.Success("Session is valid")
				pretty.Field("Username", out.Username)
			} else {
				pretty.WarnPretty("No usable session")
				pretty.Field("Reason", out.Reason)
			}
			pretty.Path("Session", out.SessionDir)
		}
		return checkErr
	}
	return cmd
}
