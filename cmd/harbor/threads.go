package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoStore = errors.New("no checkpointer configured (checkpointer.kind is none)")

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage persisted threads",
	Long:  `List, inspect, and remove thread checkpoints in the configured checkpointer.`,
}

var threadsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		threads, err := a.threads()
		if err != nil {
			return err
		}

		ids, err := threads.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing threads: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No threads found.")
			return nil
		}
		fmt.Fprintln(out, "Threads:")
		for _, t := range ids {
			fmt.Fprintln(out, "- "+t)
		}
		return nil
	},
}

var threadsInspectCmd = &cobra.Command{
	Use:   "inspect <thread-id>",
	Short: "Print the checkpoint of a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		threads, err := a.threads()
		if err != nil {
			return err
		}

		cp, err := threads.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading thread '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var threadsRmCmd = &cobra.Command{
	Use:   "rm <thread-id>...",
	Short: "Remove one or more threads",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		threads, err := a.threads()
		if err != nil {
			return err
		}

		for _, id := range args {
			if err := threads.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("removing thread '%s': %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Thread '%s' removed.\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(threadsCmd)
	threadsCmd.AddCommand(threadsLsCmd, threadsInspectCmd, threadsRmCmd)
}
