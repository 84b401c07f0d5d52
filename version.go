package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "walltint %s\n  build time: %s\n  build id:   %s\n  git commit: %s (%s)\n",
			Version, BuildTime, BuildID, GitCommit, GitBranch)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
