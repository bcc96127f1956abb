package eval

import (
	"fmt"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region eval-harness
// EvalHarness sweeps a rule base over a uniform input grid.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	if config.Steps < 2 {
		config.Steps = 2
	}
	return &EvalHarness{config: config}
}

// Run is shorthand for NewEvalHarness(config).Run(ev).
func Run(ev Evaluator, config EvalConfig) EvalResult {
	return NewEvalHarness(config).Run(ev)
}

// Run evaluates every grid point and reports, per output, the share of
// samples with a decision and the number of decisions outside [-1, 1].
func (h *EvalHarness) Run(ev Evaluator) EvalResult {
	var valid [fuzzy.NumOutputs]int
	res := EvalResult{CoverageFloor: h.config.MinCoverage}

	Grid(h.config.Steps, func(in fuzzy.CrispInput) {
		res.Samples++
		out := ev.Evaluate(in)
		for _, o := range fuzzy.Outputs {
			if !out.Valid(o) {
				continue
			}
			valid[o]++
			if v := out.Get(o); v < -1 || v > 1 {
				res.OutOfRange[o]++
			}
		}
	})

	passed := true
	var failReasons []string
	for _, o := range fuzzy.Outputs {
		res.Coverage[o] = float64(valid[o]) / float64(res.Samples)

		covPass := res.Coverage[o] >= h.config.MinCoverage
		res.Metrics = append(res.Metrics, EvalMetric{
			Name:  fmt.Sprintf("coverage_%s", o),
			Value: res.Coverage[o],
			Pass:  covPass,
		})
		if !covPass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s coverage %.4f below %.4f", o, res.Coverage[o], h.config.MinCoverage))
		}

		rangePass := res.OutOfRange[o] == 0
		res.Metrics = append(res.Metrics, EvalMetric{
			Name:  fmt.Sprintf("out_of_range_%s", o),
			Value: float64(res.OutOfRange[o]),
			Pass:  rangePass,
		})
		if !rangePass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s left [-1, 1] on %d samples", o, res.OutOfRange[o]))
		}
	}

	res.Passed = passed
	res.Reason = "all checks passed"
	if !passed {
		res.Reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			res.Reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}
	return res
}

// #endregion eval-harness

// #region grid
// Grid calls fn for each of the steps^NumInputs points of a uniform grid
// over [-1, 1] on every input. steps below 2 is treated as 2.
func Grid(steps int, fn func(fuzzy.CrispInput)) {
	if steps < 2 {
		steps = 2
	}
	var idx [fuzzy.NumInputs]int
	for {
		var in fuzzy.CrispInput
		for i, k := range idx {
			in[i] = -1 + 2*float64(k)/float64(steps-1)
		}
		fn(in)

		// odometer
		i := 0
		for ; i < fuzzy.NumInputs; i++ {
			idx[i]++
			if idx[i] < steps {
				break
			}
			idx[i] = 0
		}
		if i == fuzzy.NumInputs {
			return
		}
	}
}

// #endregion grid
