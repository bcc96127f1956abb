package fuzzy

import (
	"fmt"
	"strings"
)

// #region state
// State is one of the five linguistic states a crisp value can belong to.
type State int

const (
	LN State = iota // large negative
	MN              // medium negative
	Z               // zero
	MP              // medium positive
	LP              // large positive
)

// NumStates is the number of linguistic states.
const NumStates = 5

// States lists every state in enumeration order. Scans that break ties by
// first occurrence depend on this order.
var States = [NumStates]State{LN, MN, Z, MP, LP}

var stateNames = [NumStates]string{"LN", "MN", "Z", "MP", "LP"}

// centroids maps each state to its canonical crisp value in [-1,1].
var centroids = [NumStates]float64{-1, -0.5, 0, 0.5, 1}

// Centroid returns the canonical crisp value bound to the state.
func (s State) Centroid() float64 {
	return centroids[s]
}

// Valid reports whether s is one of the five defined states.
func (s State) Valid() bool {
	return s >= LN && s <= LP
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState resolves a state tag such as "MP" (case-insensitive).
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// #endregion state
