package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/harbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <flow>",
	Short: "Print the compiled topology of a flow",
	Long: `Prints the synthesized topology as a Mermaid flowchart (default) or JSON.
With --thread, the pending nodes of that thread are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		thread, _ := cmd.Flags().GetString("thread")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		_, topo, err := a.flow(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(topo.Edges)
		case "mermaid":
			var overlay *graph.GraphOverlay
			if thread != "" && a.store != nil {
				cp, err := a.store.Load(cmd.Context(), thread)
				if err != nil {
					return fmt.Errorf("load thread %q: %w", thread, err)
				}
				overlay = &graph.GraphOverlay{PendingNodes: cp.Next}
			}
			fmt.Fprint(out, graph.GenerateMermaid(topo, overlay))
			return nil
		default:
			return fmt.Errorf("unknown format %q (mermaid, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
	graphCmd.Flags().String("thread", "", "Highlight the pending nodes of a persisted thread")
}
