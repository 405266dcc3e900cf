package main

import (
	"fmt"

	"github.com/aretw0/harbor/internal/demo"
	"github.com/aretw0/harbor/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow...]",
	Short: "Check flows for consistency",
	Long:  `Compiles each flow and crawls it from the entry edge, reporting unreachable nodes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = demo.Names()
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		failed := 0
		for _, name := range args {
			_, topo, err := a.flow(name)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", name, err)
				failed++
				continue
			}
			report := validator.ValidateTopology(topo)
			if err := report.Err(); err != nil {
				fmt.Fprintf(out, "%s: %v\n", name, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "%s: ok (%d static, %d dynamic)\n", name, len(report.Reachable), len(report.Dynamic))
		}
		if failed > 0 {
			return fmt.Errorf("%d flow(s) failed validation", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
