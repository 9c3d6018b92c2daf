package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pf version",
	Run: func(_ *cobra.Command, _ []string) {
		if jsonOutput {
			printJSON(map[string]string{"version": Version})
			return
		}
		fmt.Printf("pf version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
