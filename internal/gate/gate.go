package gate

import (
	"fmt"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region gate
// Gate decides whether a candidate rule base may replace the active one.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	if config.MinRules < 1 {
		config.MinRules = 1
	}
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then scores the candidate.
// compileErr is the result of compiling the candidate; when it is non-nil
// the eval result is ignored.
func (g *Gate) Evaluate(compileErr error, result eval.EvalResult, ruleCount int) GateDecision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	if compileErr != nil {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCompile,
			Reason: compileErr.Error(),
		})
		return reject(vetoes)
	}

	if ruleCount < g.config.MinRules {
		reason := "rule base has no rules"
		if ruleCount > 0 {
			reason = fmt.Sprintf("rule base has %d rules, want at least %d", ruleCount, g.config.MinRules)
		}
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEmpty,
			Reason: reason,
		})
	}

	if !result.Passed {
		vetoes = append(vetoes, sweepVetoes(result)...)
	}

	if len(vetoes) > 0 {
		return reject(vetoes)
	}

	// --- Soft scoring ---
	softScore := result.MeanCoverage()

	return GateDecision{
		Action:    ActionCommit,
		Reason:    fmt.Sprintf("passed gate: soft_score=%.4f", softScore),
		SoftScore: softScore,
	}
}

// sweepVetoes explains a failed sweep. A failure the typed checks cannot
// attribute is reported with the sweep's own reason.
func sweepVetoes(result eval.EvalResult) []VetoSignal {
	var vetoes []VetoSignal
	if n := result.RangeViolations(); n > 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoRange,
			Reason: fmt.Sprintf("%d outputs outside [-1, 1] over %d samples", n, result.Samples),
		})
	}
	for _, o := range fuzzy.Outputs {
		if c := result.Coverage[o]; c < result.CoverageFloor {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoCoverage,
				Reason: fmt.Sprintf("%s coverage %.4f below floor %.4f", o, c, result.CoverageFloor),
			})
		}
	}
	if len(vetoes) == 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEval,
			Reason: result.Reason,
		})
	}
	return vetoes
}

func reject(vetoes []VetoSignal) GateDecision {
	return GateDecision{
		Action:      ActionReject,
		Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
		Vetoed:      true,
		VetoSignals: vetoes,
	}
}

// #endregion gate
