// Copyright (2012) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nrdvana/go-rsync-protocol/rsynclog"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "rsyncprobe",
	Short: "drive the rsync daemon protocol against a remote rsyncd",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		lvl := rsynclog.WARN
		switch {
		case verbosity >= 2:
			lvl = rsynclog.DEBUG
		case verbosity == 1:
			lvl = rsynclog.INFO
		}
		rsynclog.AddLogger("stderr", os.Stderr, lvl)
	},
	SilenceUsage: true,
}

// Execute runs the rsyncprobe CLI, exiting the process with a non-zero
// status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.AddCommand(connectCmd)
}
