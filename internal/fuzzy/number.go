package fuzzy

import "math"

// #region number
// Number holds one membership degree per linguistic state. Degrees are nominally
// in [0,1] but are not clamped.
type Number [NumStates]float64

// At returns the degree for state s.
func (n Number) At(s State) float64 {
	return n[s]
}

// Set stores the degree for state s.
func (n *Number) Set(s State, v float64) {
	n[s] = v
}

// Sum totals all five degrees.
func (n Number) Sum() float64 {
	var total float64
	for _, v := range n {
		total += v
	}
	return total
}

// Magnitude is the L2 norm of the degree vector.
func (n Number) Magnitude() float64 {
	var total float64
	for _, v := range n {
		total += v * v
	}
	return math.Sqrt(total)
}

// Normalized scales the degrees to unit magnitude. A zero number yields NaN
// degrees, matching the center-of-mass sentinel policy.
func (n Number) Normalized() Number {
	mag := n.Magnitude()
	var out Number
	for i, v := range n {
		out[i] = v / mag
	}
	return out
}

// #endregion number

// #region combinators
// Negate returns 1 - x for every state.
func Negate(x Number) Number {
	var out Number
	for _, s := range States {
		out[s] = 1 - x[s]
	}
	return out
}

// Or returns the element-wise maximum.
func Or(a, b Number) Number {
	var out Number
	for _, s := range States {
		out[s] = math.Max(a[s], b[s])
	}
	return out
}

// And returns the element-wise minimum.
func And(a, b Number) Number {
	var out Number
	for _, s := range States {
		out[s] = math.Min(a[s], b[s])
	}
	return out
}

// #endregion combinators
