package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
)

// #region eval

type evalOutput struct {
	Version  string              `json:"version,omitempty"`
	Method   string              `json:"method"`
	Input    map[string]float64  `json:"input"`
	Output   map[string]*float64 `json:"output"`
	Command  kart.Command        `json:"command"`
	Decision string              `json:"decision"`
	Reason   string              `json:"reason,omitempty"`
	Fired    inference.Trace     `json:"fired"`
}

func newEvalCmd(opts *cliOptions) *cobra.Command {
	var inputFlag, readingsFlag string
	cmd := &cobra.Command{
		Use:   "eval [rule-base file]",
		Short: "Evaluate one input and explain which rules fired",
		Long: `Evaluates a single crisp input against a rule-base file, or against the
active stored version when no file is given. The input is either five
normalized values (--input) or one JSON kart reading (--readings), which is
normalized with the configured kart scales.`,
		Example: `  fuzzyctl eval --input 0,-1,-1,-1,0
  fuzzyctl eval rules.yaml --readings '{"speed":4,"heading":{"x":0,"y":1},"forward":3}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in fuzzy.CrispInput
			switch {
			case inputFlag != "" && readingsFlag != "":
				return fmt.Errorf("--input and --readings are mutually exclusive")
			case inputFlag != "":
				var err error
				if in, err = parseInput(inputFlag); err != nil {
					return err
				}
			case readingsFlag != "":
				cfg, err := opts.config()
				if err != nil {
					return err
				}
				var r kart.Readings
				if err := json.Unmarshal([]byte(readingsFlag), &r); err != nil {
					return fmt.Errorf("parse readings: %w", err)
				}
				in = cfg.Kart.Input(r)
			default:
				return fmt.Errorf("one of --input or --readings is required")
			}

			p, err := opts.pipelineFor(optionalArg(args))
			if err != nil {
				return err
			}
			res := p.EvaluateTrace(in)
			decision, reason := logging.Decide(res.Output)
			out := evalOutput{
				Version:  res.Version,
				Method:   res.Method.String(),
				Input:    res.Input.Map(),
				Output:   res.Output.Map(),
				Command:  kart.FromOutput(res.Output),
				Decision: decision,
				Reason:   reason,
				Fired:    res.Trace.Fired(),
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			if out.Version != "" {
				fmt.Fprintf(w, "version %s, %s\n", shortID(out.Version), out.Method)
			}
			for _, i := range fuzzy.Inputs {
				fmt.Fprintf(w, "  in  %-22s %+.4f\n", i, res.Input.Get(i))
			}
			for _, o := range fuzzy.Outputs {
				if res.Output.Valid(o) {
					fmt.Fprintf(w, "  out %-22s %+.4f\n", o, res.Output.Get(o))
				} else {
					fmt.Fprintf(w, "  out %-22s no decision\n", o)
				}
			}
			fmt.Fprintf(w, "decision: %s", out.Decision)
			if out.Reason != "" {
				fmt.Fprintf(w, " (%s)", out.Reason)
			}
			fmt.Fprintln(w)
			for _, f := range out.Fired {
				fmt.Fprintf(w, "  %.3f  %s\n", f.Activation, f.Rule)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputFlag, "input", "", "comma-separated normalized input values")
	cmd.Flags().StringVar(&readingsFlag, "readings", "", "JSON kart readings")
	return cmd
}

// parseInput reads up to five comma-separated values; missing trailing values are 0.
func parseInput(s string) (fuzzy.CrispInput, error) {
	fields := strings.Split(s, ",")
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fuzzy.CrispInput{}, fmt.Errorf("input %q: %w", f, err)
		}
		values = append(values, v)
	}
	return fuzzy.NewCrispInput(values)
}

// #endregion eval
