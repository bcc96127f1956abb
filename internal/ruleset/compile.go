package ruleset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/membership"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rules"
)

// #region compile
// Compile turns a document into a ready pipeline. Inputs without their own
// curve set, and states missing from it, fall back to the default set.
func (d *Document) Compile() (*pipeline.Pipeline, error) {
	var errs []error

	bank, err := d.Bank()
	if err != nil {
		errs = append(errs, err)
	}
	rb, err := d.RuleBase()
	if err != nil {
		errs = append(errs, err)
	}
	method, err := d.DefuzzMethod()
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("compile %q: %w", d.Name, err)
	}
	return pipeline.Compile(bank, rb, method)
}

// DefuzzMethod resolves the method, defaulting to center of mass.
func (d *Document) DefuzzMethod() (defuzz.Method, error) {
	if d.Method == "" {
		return defuzz.CenterOfMass, nil
	}
	return defuzz.ParseMethod(d.Method)
}

// Bank builds the curve bank. Missing curves are left for Bank.Validate.
func (d *Document) Bank() (*membership.Bank, error) {
	var errs []error
	sets := make(map[fuzzy.Input]CurveSetDoc, len(d.Curves))
	var shared CurveSetDoc
	for key, set := range d.Curves {
		if strings.EqualFold(key, DefaultCurveSet) {
			shared = set
			continue
		}
		in, err := fuzzy.ParseInput(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("curves: %w", err))
			continue
		}
		sets[in] = set
	}

	bank := membership.NewBank()
	for _, in := range fuzzy.Inputs {
		own := sets[in]
		for _, s := range fuzzy.States {
			cd := own.get(s)
			if cd == nil {
				cd = shared.get(s)
			}
			if cd == nil {
				continue
			}
			c, err := cd.curve()
			if err != nil {
				errs = append(errs, fmt.Errorf("curves %s/%s: %w", in, s, err))
				continue
			}
			if err := bank.Set(in, s, c); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return bank, nil
}

// RuleBase collects simple, logical and text rules.
func (d *Document) RuleBase() (rules.RuleBase, error) {
	var rb rules.RuleBase
	var errs []error
	for i, sd := range d.Simple {
		p, err := predicate(sd.Input, sd.Polarity, sd.State)
		if err != nil {
			errs = append(errs, fmt.Errorf("simple %d: %w", i, err))
			continue
		}
		c, err := consequent(sd.Output, sd.Then)
		if err != nil {
			errs = append(errs, fmt.Errorf("simple %d: %w", i, err))
			continue
		}
		rb.Simple = append(rb.Simple, rules.SimpleRule{When: p, Then: c})
	}
	for i, ld := range d.Logical {
		left, errL := predicate(ld.Left.Input, ld.Left.Polarity, ld.Left.State)
		right, errR := predicate(ld.Right.Input, ld.Right.Polarity, ld.Right.State)
		conn, errC := rules.ParseConnective(ld.Op)
		c, errT := consequent(ld.Output, ld.Then)
		if err := errors.Join(errL, errR, errC, errT); err != nil {
			errs = append(errs, fmt.Errorf("logical %d: %w", i, err))
			continue
		}
		rb.Logical = append(rb.Logical, rules.LogicalRule{Left: left, Connective: conn, Right: right, Then: c})
	}
	text, err := rules.ParseRules(d.Rules)
	if err != nil {
		errs = append(errs, err)
	}
	rb.Simple = append(rb.Simple, text.Simple...)
	rb.Logical = append(rb.Logical, text.Logical...)
	return rb, errors.Join(errs...)
}

// #endregion compile

// #region helpers
func (cd *CurveDoc) curve() (membership.Curve, error) {
	switch {
	case cd.Constant != nil && len(cd.Keys) > 0:
		return nil, fmt.Errorf("%w: both keys and constant set", membership.ErrBadCurve)
	case cd.Constant != nil:
		return membership.Constant(*cd.Constant), nil
	case len(cd.Keys) == 0:
		return nil, fmt.Errorf("%w: neither keys nor constant set", membership.ErrBadCurve)
	}
	keys := make([]membership.Keyframe, len(cd.Keys))
	for i, k := range cd.Keys {
		if len(k) != 2 {
			return nil, fmt.Errorf("%w: key %d has %d values", membership.ErrBadCurve, i, len(k))
		}
		keys[i] = membership.Keyframe{X: k[0], Y: k[1]}
	}
	return membership.NewKeyframeCurve(keys, membership.Interpolation(cd.Interpolation))
}

func predicate(input, polarity, state string) (rules.Predicate, error) {
	in, errI := fuzzy.ParseInput(input)
	pol := rules.Is
	var errP error
	if polarity != "" {
		pol, errP = rules.ParsePolarity(polarity)
	}
	st, errS := fuzzy.ParseState(state)
	if err := errors.Join(errI, errP, errS); err != nil {
		return rules.Predicate{}, err
	}
	return rules.Predicate{Input: in, Polarity: pol, State: st}, nil
}

func consequent(output, state string) (rules.Consequent, error) {
	out, errO := fuzzy.ParseOutput(output)
	st, errS := fuzzy.ParseState(state)
	if err := errors.Join(errO, errS); err != nil {
		return rules.Consequent{}, err
	}
	return rules.Consequent{Output: out, State: st}, nil
}

// #endregion helpers
