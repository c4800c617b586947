package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the current session and its stored answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, _, err := newFlow(opts)
			if err != nil {
				return err
			}

			id := flow.Resolve(opts.sessionID)
			if id == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No active session to reset.")
				return nil
			}

			if err := flow.Reset(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s reset.\n", id)
			return nil
		},
	}
}
