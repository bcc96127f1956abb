package inference

import (
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rules"
)

// #region types
// Firing records one rule's activation against a fuzzy input.
type Firing struct {
	Rule       string           `json:"rule"`
	Target     rules.Consequent `json:"-"`
	Output     string           `json:"output"`
	State      string           `json:"state"`
	Activation float64          `json:"activation"`
}

// Trace is the per-rule activation list for one evaluation, simple rules first.
type Trace []Firing

// Fired returns only the firings with a positive activation.
func (t Trace) Fired() Trace {
	var out Trace
	for _, f := range t {
		if f.Activation > 0 {
			out = append(out, f)
		}
	}
	return out
}

// #endregion types

// #region apply
// Apply runs Mamdani max-min inference: every rule's activation is written into
// its own otherwise-zero output set, then all sets are merged cell-wise by max.
func Apply(set *fuzzy.InputSet, rb rules.RuleBase) fuzzy.OutputSet {
	return Aggregate(Activations(set, rb))
}

// Activations produces one output set per rule, simple rules first.
func Activations(set *fuzzy.InputSet, rb rules.RuleBase) []fuzzy.OutputSet {
	out := make([]fuzzy.OutputSet, 0, rb.Len())
	for _, r := range rb.Simple {
		out = append(out, single(r.Then, r.Activation(set)))
	}
	for _, r := range rb.Logical {
		out = append(out, single(r.Then, r.Activation(set)))
	}
	return out
}

// Aggregate merges per-rule output sets by per-cell maximum. Every cell starts
// at 0 and is replaced only by a strictly greater value, so untouched cells
// stay 0 and an empty list yields an all-zero set.
func Aggregate(sets []fuzzy.OutputSet) fuzzy.OutputSet {
	var agg fuzzy.OutputSet
	for _, o := range fuzzy.Outputs {
		for _, s := range fuzzy.States {
			best := 0.0
			for i := range sets {
				if v := sets[i][o][s]; v > best {
					best = v
				}
			}
			agg[o][s] = best
		}
	}
	return agg
}

// ApplyTrace is Apply plus the per-rule firings.
func ApplyTrace(set *fuzzy.InputSet, rb rules.RuleBase) (fuzzy.OutputSet, Trace) {
	trace := make(Trace, 0, rb.Len())
	for _, r := range rb.All() {
		a := r.Activation(set)
		t := r.Target()
		trace = append(trace, Firing{
			Rule:       r.String(),
			Target:     t,
			Output:     t.Output.String(),
			State:      t.State.String(),
			Activation: a,
		})
	}
	sets := make([]fuzzy.OutputSet, len(trace))
	for i, f := range trace {
		sets[i] = single(f.Target, f.Activation)
	}
	return Aggregate(sets), trace
}

func single(c rules.Consequent, a float64) fuzzy.OutputSet {
	var set fuzzy.OutputSet
	set[c.Output][c.State] = a
	return set
}

// #endregion apply
