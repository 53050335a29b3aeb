// Package cmd holds the syncgate command tree.
package cmd

import (
	"github.com/grovetools/syncgate/cli"
	"github.com/grovetools/syncgate/config"
	"github.com/grovetools/syncgate/gate"
	"github.com/grovetools/syncgate/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the syncgate command tree. The root command itself is
// transparent: every argument after the program name is forwarded to the
// downstream tool unparsed. opts are handed to gate.Build for that run.
func NewRootCmd(opts gate.Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "syncgate [downstream args...]",
		Short: "Authenticate, then hand off to the sync tool",
		Long: `Resolve an authenticated session for the sync tool and hand control to it.

A saved session is reused when it is still live. Otherwise syncgate prompts
for a username and password on stdin, logs in, saves the session and records
the credentials in the tool's configuration document before launching it.

Configuration is read from $SYNCGATE_CONFIG or the syncgate config directory.

Examples:
# download and import everything
syncgate --all --download --import --analyze
# latest data only
syncgate --all --download --import --analyze --latest`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd, args, opts)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newPathsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(cli.NewVersionCommand("syncgate"))

	cli.ApplyStyledHelpRecursive(root)
	return root
}

func runGate(cmd *cobra.Command, args []string, opts gate.Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(cli.Component)
		opts.Logger = logger
	}

	cfg, err := config.LoadWithLogger("", logger.Logger)
	if err != nil {
		return err
	}

	components, err := gate.Build(cfg, opts)
	if err != nil {
		return err
	}
	return components.Orchestrator.Run(cmd.Context(), args)
}
