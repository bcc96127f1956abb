package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/replay"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fuzzy_kart.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	rulesPath := flag.String("rules", "", "candidate rule-base file to replay against instead of the recorded one")
	version := flag.String("version", "", "version whose evaluations to replay (DB mode, default: active)")
	last := flag.Int("last", 100, "replay the N most recent evaluations (DB mode)")
	tol := flag.Float64("tol", 0, "comparison tolerance (default: fixture value or 1e-9)")
	record := flag.Bool("record", false, "append replayed evaluations to evaluation_log (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/fuzzy_kart.db [--version id] [--last N] [--rules file] [--record]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--rules file]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *rulesPath, *tol)
	} else {
		exitCode = runDBMode(*dbPath, *version, *rulesPath, *last, *tol, *record)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path, rulesPath string, tol float64) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if rulesPath == "" && f.RuleBase != "" {
		rulesPath = filepath.Join(filepath.Dir(path), f.RuleBase)
	}
	p, err := compileFile(rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rule base: %v\n", err)
		return 2
	}
	cases, err := f.ToCases()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture cases: %v\n", err)
		return 2
	}
	if tol == 0 {
		tol = f.Tolerance
	}
	if tol == 0 {
		tol = replay.DefaultTolerance
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	return printComparison(replay.Replay(p, cases, tol))
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, versionID, rulesPath string, last int, tol float64, record bool) int {
	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	var rec store.Record
	if versionID == "" {
		rec, err = st.GetCurrent()
	} else {
		rec, err = st.GetVersion(versionID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "find version: %v\n", err)
		return 2
	}

	var p *pipeline.Pipeline
	if rulesPath != "" {
		p, err = compileFile(rulesPath)
	} else {
		p, err = rec.Pipeline()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rule base: %v\n", err)
		return 2
	}

	entries, err := logging.ListEvaluations(st.DB(), rec.VersionID, last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query evaluation_log: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no evaluations logged for version %s\n", rec.VersionID)
		return 0
	}

	// Newest first from the log, replay chronologically.
	cases := make([]replay.Case, len(entries))
	for i, e := range entries {
		expected := e.Outputs
		cases[len(entries)-1-i] = replay.Case{
			ID:       fmt.Sprintf("eval-%d", e.ID),
			Input:    e.Inputs,
			Expected: &expected,
		}
	}
	if tol == 0 {
		tol = replay.DefaultTolerance
	}

	results := replay.Replay(p, cases, tol)
	if record {
		for _, r := range results {
			err := logging.LogEvaluation(st.DB(), logging.EvaluationEntry{
				VersionID:   rec.VersionID,
				TriggerType: logging.TriggerReplay,
				Inputs:      r.Input,
				Outputs:     r.Output,
				Decision:    r.Decision,
				Reason:      r.Reason,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "record %s: %v\n", r.ID, err)
				return 2
			}
		}
	}
	return printComparison(results)
}

// #endregion db-mode

// #region output

// printComparison outputs a comparison table and returns the exit code:
// 1 when any checked case diverged.
func printComparison(results []replay.ReplayResult) int {
	fmt.Printf("%-14s| %-18s| %-18s| %-10s| %s\n", "Case", "Expected", "Replayed", "Decision", "Match")
	fmt.Printf("%-14s+%-19s+%-19s+%-11s+%s\n",
		"--------------", "-------------------", "-------------------", "-----------", "------")

	for _, r := range results {
		exp := "-"
		match := "-"
		if r.Checked {
			exp = formatOutput(*r.Expected)
			match = "DIFF"
			if r.Match {
				match = "OK"
			}
		}
		fmt.Printf("%-14s| %-18s| %-18s| %-10s| %s\n", r.ID, exp, formatOutput(r.Output), r.Decision, match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge, %d unchecked (act %d, partial %d, no_action %d)\n",
		s.Total, s.Matched, s.Mismatched, s.Unchecked, s.Acts, s.Partials, s.NoActions)

	if s.Mismatched > 0 {
		return 1
	}
	return 0
}

func formatOutput(out fuzzy.CrispOutput) string {
	parts := make([]string, len(out))
	for i, v := range out {
		if math.IsNaN(v) {
			parts[i] = "   -   "
		} else {
			parts[i] = fmt.Sprintf("%+.4f", v)
		}
	}
	return strings.Join(parts, " ")
}

// #endregion output

// #region helpers

// compileFile loads a rule-base document; an empty path means the built-in default.
func compileFile(path string) (*pipeline.Pipeline, error) {
	var doc *ruleset.Document
	var err error
	if path == "" {
		doc, err = ruleset.Default()
	} else {
		doc, _, err = ruleset.Load(path)
	}
	if err != nil {
		return nil, err
	}
	return doc.Compile()
}

// #endregion helpers
