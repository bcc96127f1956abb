package pipeline

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/membership"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rules"
)

// #region pipeline
// Pipeline is a validated, immutable curve bank + rule base + method. It is
// safe for concurrent use; nothing it holds is mutated after Compile.
type Pipeline struct {
	bank    *membership.Bank
	rules   rules.RuleBase
	method  defuzz.Method
	version string
}

// Compile validates the configuration and returns a ready pipeline. Every
// configuration problem is reported in one joined error.
func Compile(bank *membership.Bank, rb rules.RuleBase, method defuzz.Method) (*Pipeline, error) {
	var errs []error
	if bank == nil {
		errs = append(errs, fmt.Errorf("%w: nil bank", membership.ErrMissingCurve))
	} else if err := bank.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := rb.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !method.Valid() {
		errs = append(errs, fmt.Errorf("%w: %v", defuzz.ErrUnknownMethod, method))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}
	return &Pipeline{
		bank:   bank.Clone(),
		rules:  cloneRules(rb),
		method: method,
	}, nil
}

// WithVersion returns a copy tagged with a rule-base version id.
func (p *Pipeline) WithVersion(id string) *Pipeline {
	cp := *p
	cp.version = id
	return &cp
}

// WithMethod returns a copy that defuzzifies with m.
func (p *Pipeline) WithMethod(m defuzz.Method) (*Pipeline, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %v", defuzz.ErrUnknownMethod, m)
	}
	cp := *p
	cp.method = m
	return &cp, nil
}

// Version is the rule-base version id, empty if untagged.
func (p *Pipeline) Version() string { return p.version }

// Method is the defuzzification method.
func (p *Pipeline) Method() defuzz.Method { return p.method }

// Rules returns the compiled rule base. Callers must not mutate it.
func (p *Pipeline) Rules() rules.RuleBase { return p.rules }

// Bank returns a copy of the curve bank.
func (p *Pipeline) Bank() *membership.Bank { return p.bank.Clone() }

// #endregion pipeline

// #region evaluate
// Evaluate runs fuzzify -> inference -> defuzzify. Output variables no rule
// covered are NaN under CenterOfMass; check CrispOutput.Valid before use.
func (p *Pipeline) Evaluate(in fuzzy.CrispInput) fuzzy.CrispOutput {
	set := p.bank.Fuzzify(in)
	return defuzz.Defuzzify(inference.Apply(&set, p.rules), p.method)
}

// Result is a fully explained evaluation.
type Result struct {
	Input      fuzzy.CrispInput
	Fuzzy      fuzzy.InputSet
	Aggregated fuzzy.OutputSet
	Trace      inference.Trace
	Output     fuzzy.CrispOutput
	Method     defuzz.Method
	Version    string
}

// EvaluateTrace is Evaluate with every intermediate stage kept.
func (p *Pipeline) EvaluateTrace(in fuzzy.CrispInput) Result {
	set := p.bank.Fuzzify(in)
	agg, trace := inference.ApplyTrace(&set, p.rules)
	return Result{
		Input:      in,
		Fuzzy:      set,
		Aggregated: agg,
		Trace:      trace,
		Output:     defuzz.Defuzzify(agg, p.method),
		Method:     p.method,
		Version:    p.version,
	}
}

// #endregion evaluate

func cloneRules(rb rules.RuleBase) rules.RuleBase {
	return rules.RuleBase{
		Simple:  append([]rules.SimpleRule(nil), rb.Simple...),
		Logical: append([]rules.LogicalRule(nil), rb.Logical...),
	}
}
