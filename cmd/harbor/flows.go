package main

import (
	"fmt"

	"github.com/aretw0/harbor/internal/demo"
	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List the bundled flows",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range demo.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", f.Name, f.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
}
