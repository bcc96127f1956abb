package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// #region rollback

func newRollbackCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <version-id>",
		Short: "Re-activate a stored rule-base version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Store().Close()

			rec, err := orch.Rollback(args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version_id": rec.VersionID,
					"name":       rec.Name,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active: %s (%s)\n", rec.VersionID, rec.Name)
			return nil
		},
	}
}

// #endregion rollback
