package main

import (
	"os"

	"github.com/grovetools/syncgate/cli"
	"github.com/grovetools/syncgate/cmd"
	"github.com/grovetools/syncgate/errors"
	"github.com/grovetools/syncgate/gate"
)

func main() {
	rootCmd := cmd.NewRootCmd(gate.Options{})

	executed, err := rootCmd.ExecuteC()
	if err != nil {
		verbose := os.Getenv("SYNCGATE_DEBUG") == "1"
		if executed != nil && cli.GetOptions(executed).Verbose {
			verbose = true
		}
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(errors.ExitCode(err))
	}
}
