package membership

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region bank
// Bank holds one curve per (input variable, state). It is read-only once
// validated and safe for concurrent Fuzzify calls.
type Bank struct {
	curves [fuzzy.NumInputs][fuzzy.NumStates]Curve
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{}
}

// Set installs the curve for one (input, state) pair.
func (b *Bank) Set(in fuzzy.Input, s fuzzy.State, c Curve) error {
	if !in.Valid() {
		return fmt.Errorf("%w: %v", fuzzy.ErrUnknownInput, in)
	}
	if !s.Valid() {
		return fmt.Errorf("%w: %v", fuzzy.ErrUnknownState, s)
	}
	b.curves[in][s] = c
	return nil
}

// SetAll installs a full five-state curve set for one input.
func (b *Bank) SetAll(in fuzzy.Input, set [fuzzy.NumStates]Curve) error {
	for _, s := range fuzzy.States {
		if err := b.Set(in, s, set[s]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a bank with the same curves. Curves themselves are immutable,
// so the copy is independent of later Set calls on b.
func (b *Bank) Clone() *Bank {
	cp := *b
	return &cp
}

// Curve returns the installed curve, or nil.
func (b *Bank) Curve(in fuzzy.Input, s fuzzy.State) Curve {
	return b.curves[in][s]
}

// Validate reports every (input, state) pair without a curve.
func (b *Bank) Validate() error {
	var errs []error
	for _, in := range fuzzy.Inputs {
		for _, s := range fuzzy.States {
			if b.curves[in][s] == nil {
				errs = append(errs, fmt.Errorf("%w: %s/%s", ErrMissingCurve, in, s))
			}
		}
	}
	return errors.Join(errs...)
}

// #endregion bank

// #region fuzzify
// Fuzzify evaluates every input's crisp value against its five curves. The
// bank must have passed Validate.
func (b *Bank) Fuzzify(in fuzzy.CrispInput) fuzzy.InputSet {
	var set fuzzy.InputSet
	for _, v := range fuzzy.Inputs {
		x := in.Get(v)
		for _, s := range fuzzy.States {
			set[v][s] = b.curves[v][s].Evaluate(x)
		}
	}
	return set
}

// #endregion fuzzify
