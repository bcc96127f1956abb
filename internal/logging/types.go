package logging

import (
	"strings"
	"time"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
)

// Trigger types.
const (
	TriggerTick   = "tick"
	TriggerRPC    = "rpc"
	TriggerReplay = "replay"
)

// Decisions.
const (
	DecisionAct      = "act"
	DecisionPartial  = "partial"
	DecisionNoAction = "no_action"
)

// #region evaluation-entry
// EvaluationEntry is a single row in the evaluation_log table.
type EvaluationEntry struct {
	ID          int64
	VersionID   string
	TriggerType string
	Inputs      fuzzy.CrispInput
	Outputs     fuzzy.CrispOutput
	Firings     inference.Trace
	Decision    string // "act" | "partial" | "no_action"
	Reason      string
	CreatedAt   time.Time
}

// #endregion evaluation-entry

// #region decide
// Decide classifies an output by how many variables carry a usable value.
func Decide(out fuzzy.CrispOutput) (decision, reason string) {
	var missing []string
	for _, o := range fuzzy.Outputs {
		if !out.Valid(o) {
			missing = append(missing, o.String())
		}
	}
	switch len(missing) {
	case 0:
		return DecisionAct, ""
	case fuzzy.NumOutputs:
		return DecisionNoAction, "no rule covered any output"
	}
	return DecisionPartial, "no value for " + strings.Join(missing, ", ")
}

// #endregion decide
