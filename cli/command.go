package cli

import (
	"github.com/grovetools/syncgate/config"
	"github.com/grovetools/syncgate/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Component is the logging component for command-level output.
const Component = "syncgate"

// CommandOptions holds common options for syncgate commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to syncgate.yml config file")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the command logger adjusted for --verbose and --json.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger(Component)

	opts := GetOptions(cmd)
	if opts.Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	if opts.JSONOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return entry
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads syncgate's configuration, honouring --config.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	logger := GetLogger(cmd)
	return config.LoadWithLogger(GetOptions(cmd).ConfigFile, logger.Logger)
}
