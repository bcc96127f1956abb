package defuzz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// ErrUnknownMethod is returned when a method name is not recognised.
var ErrUnknownMethod = errors.New("unknown defuzzification method")

// #region method
// Method selects how a fuzzy number collapses to one crisp value.
type Method int

const (
	Maximum Method = iota
	CenterOfMass
)

func (m Method) String() string {
	switch m {
	case Maximum:
		return "maximum"
	case CenterOfMass:
		return "center_of_mass"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Valid reports whether m is a defined method.
func (m Method) Valid() bool {
	return m == Maximum || m == CenterOfMass
}

// ParseMethod accepts "maximum"/"max" and "center_of_mass"/"centerofmass"/"com".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)) {
	case "maximum", "max":
		return Maximum, nil
	case "centerofmass", "centreofmass", "com", "centroid":
		return CenterOfMass, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// #endregion method

// #region strategies
// MaximumOf returns the centroid of the state with the greatest degree. States
// are scanned LN..LP with strict-greater comparison from 0, so ties go to the
// first state and an all-zero number yields Z's centroid.
func MaximumOf(n fuzzy.Number) float64 {
	best := fuzzy.Z
	peak := 0.0
	for _, s := range fuzzy.States {
		if n[s] > peak {
			peak = n[s]
			best = s
		}
	}
	return best.Centroid()
}

// CenterOfMassOf returns the degree-weighted mean of the state centroids. A
// zero-sum number yields NaN: no rule covered this variable.
func CenterOfMassOf(n fuzzy.Number) float64 {
	sum := n.Sum()
	var result float64
	for _, s := range fuzzy.States {
		result += n[s] * s.Centroid() / sum
	}
	return result
}

// #endregion strategies

// #region defuzzify
// Defuzzify collapses every output variable with method m. Methods are
// validated when a pipeline is built; an unknown method here panics.
func Defuzzify(set fuzzy.OutputSet, m Method) fuzzy.CrispOutput {
	var f func(fuzzy.Number) float64
	switch m {
	case Maximum:
		f = MaximumOf
	case CenterOfMass:
		f = CenterOfMassOf
	default:
		panic(fmt.Sprintf("defuzz: %v", m))
	}
	var out fuzzy.CrispOutput
	for _, o := range fuzzy.Outputs {
		out.Set(o, f(set[o]))
	}
	return out
}

// #endregion defuzzify
