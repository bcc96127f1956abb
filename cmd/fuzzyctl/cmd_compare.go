package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rbs"
)

// #region compare

// compareRow is one tick run through both controllers.
type compareRow struct {
	Tick     int          `json:"tick"`
	Fuzzy    kart.Command `json:"fuzzy"`
	Baseline kart.Command `json:"baseline"`
	Fired    []string     `json:"baseline_rules,omitempty"`
	Agree    bool         `json:"agree"`
}

// compareSummary counts ticks where both controllers steer the same way.
type compareSummary struct {
	Ticks        int     `json:"ticks"`
	Agree        int     `json:"agree"`
	FuzzyNoTurn  int     `json:"fuzzy_no_turn"`
	MeanTurnDiff float64 `json:"mean_turn_diff"`
}

func newCompareCmd(opts *cliOptions) *cobra.Command {
	var readingsPath string
	cmd := &cobra.Command{
		Use:   "compare [rule-base file] --readings ticks.jsonl",
		Short: "Run recorded kart readings through the fuzzy and crisp controllers",
		Long: `Reads one JSON kart reading per line and reports, per tick, the fuzzy
command next to the crisp rule-based baseline. Ticks agree when both steer
the same way (left, right or straight).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if readingsPath == "" {
				return fmt.Errorf("--readings is required")
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			p, err := opts.pipelineFor(optionalArg(args))
			if err != nil {
				return err
			}
			f, err := os.Open(readingsPath)
			if err != nil {
				return err
			}
			defer f.Close()

			rows, sum, err := compare(f, p, rbs.Default(), cfg.Kart)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"ticks": rows, "summary": sum})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s| %-17s| %-17s| %s\n", "Tick", "Fuzzy drive/turn", "Crisp drive/turn", "Agree")
			fmt.Fprintf(w, "%-6s+%-18s+%-18s+%s\n", "------", "------------------", "------------------", "------")
			for _, r := range rows {
				agree := "DIFF"
				if r.Agree {
					agree = "OK"
				}
				fmt.Fprintf(w, "%-6d| %-17s| %-17s| %s\n", r.Tick, formatCommand(r.Fuzzy), formatCommand(r.Baseline), agree)
			}
			fmt.Fprintf(w, "\nSummary: %d ticks, %d agree, %d without a fuzzy turn, mean |turn diff| %.3f\n",
				sum.Ticks, sum.Agree, sum.FuzzyNoTurn, sum.MeanTurnDiff)
			return nil
		},
	}
	cmd.Flags().StringVar(&readingsPath, "readings", "", "JSON-lines file of kart readings")
	return cmd
}

// compare evaluates every reading in r with both controllers.
func compare(r io.Reader, p *pipeline.Pipeline, baseline *rbs.Controller, scales kart.Scales) ([]compareRow, compareSummary, error) {
	var rows []compareRow
	var sum compareSummary
	var diff float64

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rd kart.Readings
		if err := json.Unmarshal([]byte(text), &rd); err != nil {
			return nil, sum, fmt.Errorf("line %d: %w", line, err)
		}
		fz := kart.FromOutput(p.Evaluate(scales.Input(rd)))
		bl, fired, err := baseline.Instructions(rd.Raw())
		if err != nil {
			return nil, sum, fmt.Errorf("line %d: %w", line, err)
		}

		row := compareRow{
			Tick:     len(rows) + 1,
			Fuzzy:    fz,
			Baseline: bl,
			Fired:    fired,
			Agree:    sign(fz.Turn) == sign(bl.Turn),
		}
		rows = append(rows, row)
		sum.Ticks++
		if row.Agree {
			sum.Agree++
		}
		if !fz.TurnValid {
			sum.FuzzyNoTurn++
		}
		diff += math.Abs(fz.Turn - bl.Turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, sum, err
	}
	if sum.Ticks > 0 {
		sum.MeanTurnDiff = diff / float64(sum.Ticks)
	}
	return rows, sum, nil
}

const turnDeadband = 1e-3

func sign(v float64) int {
	switch {
	case v > turnDeadband:
		return 1
	case v < -turnDeadband:
		return -1
	}
	return 0
}

func formatCommand(c kart.Command) string {
	drive, turn := "   -  ", "   -  "
	if c.DriveValid {
		drive = fmt.Sprintf("%+.3f", c.Drive)
	}
	if c.TurnValid {
		turn = fmt.Sprintf("%+.3f", c.Turn)
	}
	return drive + " " + turn
}

// #endregion compare
