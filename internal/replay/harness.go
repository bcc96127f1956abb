package replay

import (
	"math"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/logging"
)

// DefaultTolerance is used when a fixture does not set one.
const DefaultTolerance = 1e-9

// #region types
// Case is a single recorded input for replay.
type Case struct {
	ID       string
	Input    fuzzy.CrispInput
	Expected *fuzzy.CrispOutput // nil: run only, nothing to compare
}

// ReplayResult captures the outcome of replaying one case.
type ReplayResult struct {
	ID       string
	Input    fuzzy.CrispInput
	Output   fuzzy.CrispOutput
	Expected *fuzzy.CrispOutput
	Checked  bool
	Match    bool
	Decision string // "act" | "partial" | "no_action"
	Reason   string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total      int
	Matched    int
	Mismatched int
	Unchecked  int
	Acts       int
	Partials   int
	NoActions  int
}

// #endregion types

// #region replay
// Replay evaluates every case in order. Outputs match when both are "no
// decision" or both are valid and within tol of each other.
func Replay(ev eval.Evaluator, cases []Case, tol float64) []ReplayResult {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	results := make([]ReplayResult, 0, len(cases))
	for _, c := range cases {
		out := ev.Evaluate(c.Input)
		decision, reason := logging.Decide(out)
		r := ReplayResult{
			ID:       c.ID,
			Input:    c.Input,
			Output:   out,
			Expected: c.Expected,
			Decision: decision,
			Reason:   reason,
		}
		if c.Expected != nil {
			r.Checked = true
			r.Match = Equal(out, *c.Expected, tol)
		}
		results = append(results, r)
	}
	return results
}

// Equal compares two outputs slot by slot, treating NaN as equal to NaN.
func Equal(a, b fuzzy.CrispOutput, tol float64) bool {
	for _, o := range fuzzy.Outputs {
		av, bv := a.Get(o), b.Get(o)
		if a.Valid(o) != b.Valid(o) {
			return false
		}
		if a.Valid(o) && math.Abs(av-bv) > tol {
			return false
		}
	}
	return true
}

// #endregion replay

// #region summarize
// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		switch {
		case !r.Checked:
			s.Unchecked++
		case r.Match:
			s.Matched++
		default:
			s.Mismatched++
		}
		switch r.Decision {
		case logging.DecisionAct:
			s.Acts++
		case logging.DecisionPartial:
			s.Partials++
		case logging.DecisionNoAction:
			s.NoActions++
		}
	}
	return s
}

// #endregion summarize
