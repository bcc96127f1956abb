package gate

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
)

// makeResult builds a sweep judged against a 0.5 coverage floor.
func makeResult(fb, lr float64, outOfRange int) eval.EvalResult {
	r := eval.EvalResult{Samples: 100, CoverageFloor: 0.5}
	r.Coverage[0] = fb
	r.Coverage[1] = lr
	r.OutOfRange[0] = outOfRange
	r.Passed = fb >= 0.5 && lr >= 0.5 && outOfRange == 0
	return r
}

func TestGateCommitOnCleanCandidate(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(1, 0.5, 0), 12)

	if decision.Action != ActionCommit {
		t.Fatalf("expected commit, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
	if decision.SoftScore != 0.75 {
		t.Fatalf("expected soft score 0.75, got %v", decision.SoftScore)
	}
}

func TestGateRejectOnCompileError(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(errors.New("missing curve"), makeResult(1, 1, 0), 12)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if len(decision.VetoSignals) != 1 || decision.VetoSignals[0].Type != VetoCompile {
		t.Fatalf("expected single compile veto, got %+v", decision.VetoSignals)
	}
	if decision.Reason != "hard veto: missing curve" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestGateRejectOnEmptyRuleBase(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(1, 1, 0), 0)

	if !decision.Vetoed || decision.VetoSignals[0].Type != VetoEmpty {
		t.Fatalf("expected empty veto, got %+v", decision)
	}
}

func TestGateRejectOnRangeViolation(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(1, 1, 3), 5)

	if !decision.Vetoed || decision.VetoSignals[0].Type != VetoRange {
		t.Fatalf("expected range veto, got %+v", decision)
	}
}

func TestGateRejectOnLowCoverage(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(0.9, 0.1, 0), 5)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoCoverage {
		t.Fatalf("expected coverage veto, got %s", decision.VetoSignals[0].Type)
	}
	if decision.SoftScore != 0 {
		t.Fatalf("rejected candidates score 0, got %v", decision.SoftScore)
	}
}

func TestGateCollectsAllVetoes(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(0, 0, 1), 0)

	// empty + range + two coverage
	if len(decision.VetoSignals) != 4 {
		t.Fatalf("expected 4 vetoes, got %d: %+v", len(decision.VetoSignals), decision.VetoSignals)
	}
}

func TestGateCoverageFloorInclusive(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(nil, makeResult(0.5, 0.5, 0), 1)

	if decision.Action != ActionCommit {
		t.Fatalf("coverage equal to the floor should pass: %s", decision.Reason)
	}
}

func TestGateFollowsSweepVerdict(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	// The gate has no coverage floor of its own; the sweep's verdict decides.
	failed := makeResult(0.4, 0.4, 0)
	decision := g.Evaluate(nil, failed, 5)
	if decision.Action != ActionReject || len(decision.VetoSignals) != 2 {
		t.Fatalf("expected two coverage vetoes, got %+v", decision)
	}

	passed := makeResult(0.4, 0.4, 0)
	passed.CoverageFloor = 0.3
	passed.Passed = true
	if decision := g.Evaluate(nil, passed, 5); decision.Action != ActionCommit {
		t.Fatalf("expected commit for a passed sweep, got %s: %s", decision.Action, decision.Reason)
	}
}

func TestGateUnattributedSweepFailure(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	result := makeResult(1, 1, 0)
	result.Passed = false
	result.Reason = "eval failed: something else"
	decision := g.Evaluate(nil, result, 5)

	if len(decision.VetoSignals) != 1 || decision.VetoSignals[0].Type != VetoEval {
		t.Fatalf("expected eval veto, got %+v", decision.VetoSignals)
	}
	if decision.Reason != "hard veto: eval failed: something else" {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestGateMinRules(t *testing.T) {
	g := NewGate(GateConfig{MinRules: 3})

	decision := g.Evaluate(nil, makeResult(1, 1, 0), 2)
	if !decision.Vetoed || decision.VetoSignals[0].Type != VetoEmpty {
		t.Fatalf("expected rule-count veto, got %+v", decision)
	}

	// A zero config still refuses an empty rule base.
	if decision := NewGate(GateConfig{}).Evaluate(nil, makeResult(1, 1, 0), 0); !decision.Vetoed {
		t.Fatal("expected empty rule base to be vetoed")
	}
}
