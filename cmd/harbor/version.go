package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/harbor"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of harbor",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "harbor version %s\n", strings.TrimSpace(harbor.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
