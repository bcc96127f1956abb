package eval

import "github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"

// #region evaluator
// Evaluator is anything that maps a crisp input to a crisp output;
// *pipeline.Pipeline satisfies it.
type Evaluator interface {
	Evaluate(fuzzy.CrispInput) fuzzy.CrispOutput
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(fuzzy.CrispInput) fuzzy.CrispOutput

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(in fuzzy.CrispInput) fuzzy.CrispOutput { return f(in) }

// #endregion evaluator

// #region eval-config
// EvalConfig holds the sweep resolution and pass thresholds.
type EvalConfig struct {
	Steps       int     `yaml:"steps" validate:"min=2,max=21"`       // grid points per input in [-1, 1]
	MinCoverage float64 `yaml:"min_coverage" validate:"gte=0,lte=1"` // fail if any output is valid on fewer samples
}

// DefaultEvalConfig sweeps 5^5 inputs and wants half of them covered.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Steps:       5,
		MinCoverage: 0.5,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a coverage sweep.
type EvalResult struct {
	Passed        bool                      `json:"passed"`
	Samples       int                       `json:"samples"`
	Coverage      [fuzzy.NumOutputs]float64 `json:"coverage"`
	CoverageFloor float64                   `json:"coverage_floor"` // MinCoverage the sweep was judged against
	OutOfRange    [fuzzy.NumOutputs]int     `json:"out_of_range"`
	Metrics       []EvalMetric              `json:"metrics"`
	Reason        string                    `json:"reason"`
}

// MeanCoverage averages coverage over every output variable.
func (r EvalResult) MeanCoverage() float64 {
	var sum float64
	for _, c := range r.Coverage {
		sum += c
	}
	return sum / float64(len(r.Coverage))
}

// RangeViolations is the total number of valid outputs outside [-1, 1].
func (r EvalResult) RangeViolations() int {
	var n int
	for _, c := range r.OutOfRange {
		n += c
	}
	return n
}

// #endregion eval-result
