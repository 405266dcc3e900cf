package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/harbor/internal/demo"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <flow>",
	Short: "Run a flow to completion and print the final state",
	Long: `Runs a bundled flow. Without --input the flow's sample input is used.
With --stream every superstep is printed as it completes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputJSON, _ := cmd.Flags().GetString("input")
		thread, _ := cmd.Flags().GetString("thread")
		stream, _ := cmd.Flags().GetBool("stream")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")

		f, err := demo.Lookup(args[0])
		if err != nil {
			return err
		}
		input := f.Sample
		if inputJSON != "" {
			input = domain.State{}
			if err := json.Unmarshal([]byte(inputJSON), &input); err != nil {
				return fmt.Errorf("invalid --input: %w", err)
			}
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		art, _, err := a.flow(f.Name)
		if err != nil {
			return err
		}

		var opts []ports.RunOption
		if thread != "" {
			opts = append(opts, ports.WithThread(thread))
		}
		if maxSteps > 0 {
			opts = append(opts, ports.WithRecursionLimit(maxSteps))
		}

		out := cmd.OutOrStdout()
		var final domain.State
		if stream {
			final = input
			for snap, err := range art.Stream(cmd.Context(), input, opts...) {
				if err != nil {
					return err
				}
				next := strings.Join(snap.Next, ", ")
				if next == "" {
					next = "end"
				}
				changed := slices.Sorted(maps.Keys(domain.Diff(final, snap.Values)))
				fmt.Fprintf(out, "step %d: %s -> %s (changed: %s)\n", snap.Step, strings.Join(snap.Nodes, ", "), next, strings.Join(changed, ", "))
				final = snap.Values
			}
		} else {
			final, err = art.Invoke(cmd.Context(), input, opts...)
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("input", "i", "", "Initial state as a JSON object")
	runCmd.Flags().StringP("thread", "t", "", "Persist and resume the run under this thread id")
	runCmd.Flags().Bool("stream", false, "Print each superstep as it completes")
	runCmd.Flags().Int("max-steps", 0, "Override the configured recursion limit")
}
