package pipeline

import (
	"fmt"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region ranges
// Range is a raw [Min,Max] scale mapped to [-1,1].
type Range struct {
	Min float64 `json:"min" yaml:"min" toml:"min"`
	Max float64 `json:"max" yaml:"max" toml:"max"`
}

// UnevenRange is a raw scale whose Neutral maps to 0.
type UnevenRange struct {
	Min     float64 `json:"min" yaml:"min" toml:"min"`
	Neutral float64 `json:"neutral" yaml:"neutral" toml:"neutral"`
	Max     float64 `json:"max" yaml:"max" toml:"max"`
}

// #endregion ranges

// #region build-input
// BuildInput wraps already-normalized values. More values than input
// variables is a configuration error.
func BuildInput(values []float64) (fuzzy.CrispInput, error) {
	return fuzzy.NewCrispInput(values)
}

// BuildInputNormalized normalizes each raw value over its range.
func BuildInputNormalized(values []float64, ranges []Range) (fuzzy.CrispInput, error) {
	if len(ranges) != len(values) {
		return fuzzy.CrispInput{}, fmt.Errorf("%w: %d values, %d ranges", fuzzy.ErrLengthMismatch, len(values), len(ranges))
	}
	norm := make([]float64, len(values))
	for i, v := range values {
		norm[i] = fuzzy.Normalize(ranges[i].Min, ranges[i].Max, v)
	}
	return fuzzy.NewCrispInput(norm)
}

// BuildInputNormalizedUneven normalizes each raw value around its neutral point.
func BuildInputNormalizedUneven(values []float64, ranges []UnevenRange) (fuzzy.CrispInput, error) {
	if len(ranges) != len(values) {
		return fuzzy.CrispInput{}, fmt.Errorf("%w: %d values, %d ranges", fuzzy.ErrLengthMismatch, len(values), len(ranges))
	}
	norm := make([]float64, len(values))
	for i, v := range values {
		norm[i] = fuzzy.NormalizeUneven(ranges[i].Min, ranges[i].Neutral, ranges[i].Max, v)
	}
	return fuzzy.NewCrispInput(norm)
}

// #endregion build-input

// #region denormalize-output
// DenormalizeOutput projects each output back onto its raw range. NaN slots
// stay NaN.
func DenormalizeOutput(out fuzzy.CrispOutput, ranges []Range) (fuzzy.CrispOutput, error) {
	if len(ranges) != fuzzy.NumOutputs {
		return fuzzy.CrispOutput{}, fmt.Errorf("%w: %d ranges for %d outputs", fuzzy.ErrLengthMismatch, len(ranges), fuzzy.NumOutputs)
	}
	var raw fuzzy.CrispOutput
	for _, o := range fuzzy.Outputs {
		raw.Set(o, fuzzy.Denormalize(ranges[o].Min, ranges[o].Max, out.Get(o)))
	}
	return raw, nil
}

// DenormalizeOutputUneven is DenormalizeOutput around per-output neutral points.
func DenormalizeOutputUneven(out fuzzy.CrispOutput, ranges []UnevenRange) (fuzzy.CrispOutput, error) {
	if len(ranges) != fuzzy.NumOutputs {
		return fuzzy.CrispOutput{}, fmt.Errorf("%w: %d ranges for %d outputs", fuzzy.ErrLengthMismatch, len(ranges), fuzzy.NumOutputs)
	}
	var raw fuzzy.CrispOutput
	for _, o := range fuzzy.Outputs {
		r := ranges[o]
		raw.Set(o, fuzzy.DenormalizeUneven(r.Min, r.Neutral, r.Max, out.Get(o)))
	}
	return raw, nil
}

// #endregion denormalize-output
