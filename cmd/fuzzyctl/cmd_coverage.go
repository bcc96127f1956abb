package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/gate"
)

// #region coverage

type coverageOutput struct {
	Eval     eval.EvalResult   `json:"eval"`
	Decision gate.GateDecision `json:"gate"`
}

func newCoverageCmd(opts *cliOptions) *cobra.Command {
	var steps int
	var minCoverage float64
	cmd := &cobra.Command{
		Use:   "coverage [rule-base file]",
		Short: "Sweep a rule base over the input grid and show the gate's verdict",
		Long: `Runs the coverage sweep that import uses, without writing anything. Flags
left at zero fall back to the eval section of the config. The gate rejects
whatever the sweep fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if steps > 0 {
				cfg.Eval.Steps = steps
			}
			if minCoverage > 0 {
				cfg.Eval.MinCoverage = minCoverage
			}

			p, err := opts.pipelineFor(optionalArg(args))
			if err != nil {
				return err
			}
			res := eval.Run(p, cfg.Eval)
			out := coverageOutput{
				Eval:     res,
				Decision: gate.NewGate(cfg.Gate).Evaluate(nil, res, p.Rules().Len()),
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d samples (%d steps per input), %d rules\n", res.Samples, cfg.Eval.Steps, p.Rules().Len())
			fmt.Fprintf(w, "%-18s  %8s  %12s\n", "Output", "Coverage", "Out of range")
			for _, o := range fuzzy.Outputs {
				fmt.Fprintf(w, "%-18s  %8.3f  %12d\n", o, res.Coverage[o], res.OutOfRange[o])
			}
			for _, m := range res.Metrics {
				mark := "ok"
				if !m.Pass {
					mark = "FAIL"
				}
				fmt.Fprintf(w, "  %-28s %8.3f  %s\n", m.Name, m.Value, mark)
			}
			fmt.Fprintf(w, "eval: passed=%v", res.Passed)
			if res.Reason != "" {
				fmt.Fprintf(w, " (%s)", res.Reason)
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "gate: %s, soft score %.3f", out.Decision.Action, out.Decision.SoftScore)
			if out.Decision.Vetoed {
				fmt.Fprintf(w, " (%s)", out.Decision.Reason)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "grid points per input")
	cmd.Flags().Float64Var(&minCoverage, "min-coverage", 0, "coverage floor per output")
	return cmd
}

// #endregion coverage
