package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// #region inputs
// Input tags one slot of a CrispInput.
type Input int

const (
	Speed Input = iota
	ForwardDistance
	RightDistance
	LeftDistance
	ForwardSurfaceNormal
)

// NumInputs is the number of declared input variables.
const NumInputs = 5

// Inputs lists every input variable in slot order.
var Inputs = [NumInputs]Input{Speed, ForwardDistance, RightDistance, LeftDistance, ForwardSurfaceNormal}

var inputNames = [NumInputs]string{"Speed", "ForwardDistance", "RightDistance", "LeftDistance", "ForwardSurfaceNormal"}

// Valid reports whether i names a declared input variable.
func (i Input) Valid() bool {
	return i >= 0 && int(i) < NumInputs
}

func (i Input) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Input(%d)", int(i))
	}
	return inputNames[i]
}

// ParseInput resolves an input variable name (case-insensitive).
func ParseInput(name string) (Input, error) {
	for i, n := range inputNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Input(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInput, name)
}

// #endregion inputs

// #region outputs
// Output tags one slot of a CrispOutput.
type Output int

const (
	ForwardBackwards Output = iota
	LeftRight
)

// NumOutputs is the number of declared output variables.
const NumOutputs = 2

// Outputs lists every output variable in slot order.
var Outputs = [NumOutputs]Output{ForwardBackwards, LeftRight}

var outputNames = [NumOutputs]string{"ForwardBackwards", "LeftRight"}

// Valid reports whether o names a declared output variable.
func (o Output) Valid() bool {
	return o >= 0 && int(o) < NumOutputs
}

func (o Output) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Output(%d)", int(o))
	}
	return outputNames[o]
}

// ParseOutput resolves an output variable name (case-insensitive).
func ParseOutput(name string) (Output, error) {
	for i, n := range outputNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Output(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
}

// #endregion outputs

// #region crisp-input
// CrispInput is the normalized measurement vector fed to the fuzzifier.
// Values are expected, not enforced, to lie in [-1,1].
type CrispInput [NumInputs]float64

// NewCrispInput copies values into a CrispInput. Supplying more values than
// declared variables is a configuration error; missing trailing values are 0.
func NewCrispInput(values []float64) (CrispInput, error) {
	var in CrispInput
	if len(values) > NumInputs {
		return in, fmt.Errorf("%w: got %d, have %d", ErrTooManyValues, len(values), NumInputs)
	}
	copy(in[:], values)
	return in, nil
}

// Get returns the value of variable i.
func (c CrispInput) Get(i Input) float64 {
	return c[i]
}

// Set stores the value of variable i.
func (c *CrispInput) Set(i Input, v float64) {
	c[i] = v
}

// Map returns the input keyed by variable name.
func (c CrispInput) Map() map[string]float64 {
	m := make(map[string]float64, NumInputs)
	for _, i := range Inputs {
		m[i.String()] = c[i]
	}
	return m
}

// #endregion crisp-input

// #region crisp-output
// CrispOutput is the defuzzified command vector. A NaN slot means no rule
// produced a decision for that variable; callers must check Valid before use.
type CrispOutput [NumOutputs]float64

// NewCrispOutput copies values into a CrispOutput.
func NewCrispOutput(values []float64) (CrispOutput, error) {
	var out CrispOutput
	if len(values) > NumOutputs {
		return out, fmt.Errorf("%w: got %d, have %d", ErrTooManyValues, len(values), NumOutputs)
	}
	copy(out[:], values)
	return out, nil
}

// Get returns the value of variable o, possibly NaN.
func (c CrispOutput) Get(o Output) float64 {
	return c[o]
}

// Set stores the value of variable o.
func (c *CrispOutput) Set(o Output, v float64) {
	c[o] = v
}

// Valid reports whether variable o carries a decision.
func (c CrispOutput) Valid(o Output) bool {
	return ValidInstruction(c[o])
}

// AllValid reports whether every output variable carries a decision.
func (c CrispOutput) AllValid() bool {
	for _, o := range Outputs {
		if !c.Valid(o) {
			return false
		}
	}
	return true
}

// Map returns the output keyed by variable name; invalid slots map to nil.
func (c CrispOutput) Map() map[string]*float64 {
	m := make(map[string]*float64, NumOutputs)
	for _, o := range Outputs {
		if !c.Valid(o) {
			m[o.String()] = nil
			continue
		}
		v := c[o]
		m[o.String()] = &v
	}
	return m
}

// ValidInstruction reports whether v is a usable crisp value (not the NaN sentinel).
func ValidInstruction(v float64) bool {
	return !math.IsNaN(v)
}

// #endregion crisp-output

// #region fuzzy-sets
// InputSet holds one fuzzy number per input variable.
type InputSet [NumInputs]Number

// Get returns the fuzzy number of variable i.
func (s *InputSet) Get(i Input) Number {
	return s[i]
}

// OutputSet holds one fuzzy number per output variable.
type OutputSet [NumOutputs]Number

// Get returns the fuzzy number of variable o.
func (s *OutputSet) Get(o Output) Number {
	return s[o]
}

// #endregion fuzzy-sets
