package membership

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrMissingCurve = errors.New("missing membership curve")
	ErrBadCurve     = errors.New("invalid membership curve")
)

// #region curve
// Curve maps a crisp scalar to a membership degree.
type Curve interface {
	Evaluate(x float64) float64
}

// Constant is a curve that ignores its input.
type Constant float64

// Evaluate returns the constant degree.
func (c Constant) Evaluate(float64) float64 {
	return float64(c)
}

// #endregion curve

// #region keyframes
// Interpolation selects how a KeyframeCurve fills the space between keys.
type Interpolation string

const (
	Linear Interpolation = "linear"
	Smooth Interpolation = "smooth" // monotone cubic (Fritsch-Butland)
)

// Keyframe is one authored (x, degree) point.
type Keyframe struct {
	X float64
	Y float64
}

// KeyframeCurve interpolates between authored keyframes. Inputs outside the
// authored domain take the value of the nearest edge key; a NaN input has
// degree 0.
type KeyframeCurve struct {
	keys      []Keyframe
	mode      Interpolation
	predictor fitPredictor
}

type fitPredictor interface {
	Fit(xs, ys []float64) error
	Predict(x float64) float64
}

// NewKeyframeCurve validates and fits the keys. Keys are sorted by X; duplicate
// X values are rejected.
func NewKeyframeCurve(keys []Keyframe, mode Interpolation) (*KeyframeCurve, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys", ErrBadCurve)
	}
	if mode == "" {
		mode = Linear
	}
	if mode != Linear && mode != Smooth {
		return nil, fmt.Errorf("%w: unknown interpolation %q", ErrBadCurve, mode)
	}

	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, k := range sorted {
		if math.IsNaN(k.X) || math.IsInf(k.X, 0) || math.IsNaN(k.Y) || math.IsInf(k.Y, 0) {
			return nil, fmt.Errorf("%w: non-finite key %v", ErrBadCurve, k)
		}
		if i > 0 && k.X == sorted[i-1].X {
			return nil, fmt.Errorf("%w: duplicate key at x=%v", ErrBadCurve, k.X)
		}
		xs[i], ys[i] = k.X, k.Y
	}

	c := &KeyframeCurve{keys: sorted, mode: mode}
	if len(sorted) == 1 {
		return c, nil
	}

	var fp fitPredictor = &interp.PiecewiseLinear{}
	if mode == Smooth && len(sorted) > 2 {
		fp = &interp.FritschButland{}
	}
	if err := fp.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: fit: %v", ErrBadCurve, err)
	}
	c.predictor = fp
	return c, nil
}

// Evaluate returns the membership degree at x.
func (c *KeyframeCurve) Evaluate(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	first, last := c.keys[0], c.keys[len(c.keys)-1]
	switch {
	case x <= first.X:
		return first.Y
	case x >= last.X:
		return last.Y
	}
	return c.predictor.Predict(x)
}

// Keys returns a copy of the sorted keyframes.
func (c *KeyframeCurve) Keys() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// Mode reports the interpolation used between keys.
func (c *KeyframeCurve) Mode() Interpolation {
	return c.mode
}

// #endregion keyframes

// #region shapes
// Triangle builds the usual triangular membership curve peaking at b.
func Triangle(a, b, c float64) (*KeyframeCurve, error) {
	return NewKeyframeCurve([]Keyframe{{a, 0}, {b, 1}, {c, 0}}, Linear)
}

// Trapezoid builds a trapezoidal curve that is 1 across [b,c].
func Trapezoid(a, b, c, d float64) (*KeyframeCurve, error) {
	return NewKeyframeCurve([]Keyframe{{a, 0}, {b, 1}, {c, 1}, {d, 0}}, Linear)
}

// #endregion shapes
