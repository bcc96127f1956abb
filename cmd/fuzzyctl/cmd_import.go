package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/orchestrator"
)

// #region import

func newImportCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <rule-base file>",
		Short: "Gate a rule-base document and make it the active version",
		Long: `Compiles the document, sweeps its coverage and runs it through the gate.
A committed document becomes the active version; a rejected one leaves the
store untouched and exits with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator()
			if err != nil {
				return err
			}
			defer orch.Store().Close()

			adm, err := orch.AdmitFile(args[0])
			if err != nil && !errors.Is(err, orchestrator.ErrRejected) {
				return err
			}
			if opts.jsonOut {
				if perr := printJSON(cmd.OutOrStdout(), adm); perr != nil {
					return perr
				}
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case adm.Unchanged:
				fmt.Fprintf(w, "unchanged: %s is already active (%s)\n", args[0], shortID(adm.Record.VersionID))
			case err != nil:
				fmt.Fprintf(w, "rejected: %s\n", adm.Decision.Reason)
			default:
				fmt.Fprintf(w, "committed %s as %s (parent %s)\n", adm.Record.Name, adm.Record.VersionID, orNone(adm.Record.ParentID))
			}
			if adm.Eval.Samples > 0 {
				for _, o := range fuzzy.Outputs {
					fmt.Fprintf(w, "  %-18s coverage %.3f\n", o, adm.Eval.Coverage[o])
				}
				fmt.Fprintf(w, "  soft score %.3f\n", adm.Decision.SoftScore)
			}
			return err
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// #endregion import
