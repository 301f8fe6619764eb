package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gustobot %s (commit %s, built %s, %s)\n",
			version, commit, date, runtime.Version())
	},
}
