package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoCompile  VetoType = "compile_error"
	VetoEmpty    VetoType = "empty_rule_base"
	VetoRange    VetoType = "range_violation"
	VetoCoverage VetoType = "low_coverage"
	VetoEval     VetoType = "eval_failed"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType `json:"type"`
	Reason string   `json:"reason"`
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for gate decisions. Coverage is judged by the
// sweep itself (eval.EvalConfig.MinCoverage); the gate only acts on its verdict.
type GateConfig struct {
	MinRules int `yaml:"min_rules" validate:"gte=1"` // veto rule bases with fewer rules
}

// DefaultGateConfig returns the default thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinRules: 1,
	}
}

// #endregion gate-config

// Actions.
const (
	ActionCommit = "commit"
	ActionReject = "reject"
)

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string       `json:"action"` // "commit" | "reject"
	Reason      string       `json:"reason"`
	Vetoed      bool         `json:"vetoed"`
	VetoSignals []VetoSignal `json:"veto_signals,omitempty"` // non-empty if vetoed
	SoftScore   float64      `json:"soft_score"`             // mean coverage, for logging
}

// #endregion gate-decision
