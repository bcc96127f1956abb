package orchestrator

import (
	"errors"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/eval"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/gate"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/store"
)

// ErrRejected is returned when the gate refuses a candidate rule base.
var ErrRejected = errors.New("rule base rejected")

// #region options
// Options configures admission and evaluation logging.
type Options struct {
	Eval           eval.EvalConfig
	Gate           gate.GateConfig
	Method         string // overrides the document's defuzzification method when set
	LogEvaluations bool
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		Eval:           eval.DefaultEvalConfig(),
		Gate:           gate.DefaultGateConfig(),
		LogEvaluations: true,
	}
}

// #endregion options

// #region admission
// Admission reports what happened to one candidate rule base.
type Admission struct {
	Record    store.Record      // the stored version; zero when rejected
	Decision  gate.GateDecision
	Eval      eval.EvalResult
	Unchanged bool // candidate matched the active checksum; nothing was written
}

// #endregion admission
