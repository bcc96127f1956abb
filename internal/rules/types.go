package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// ErrInvalidRule marks a rule that references an undefined variable, state,
// polarity or connective.
var ErrInvalidRule = errors.New("invalid rule")

// #region polarity
// Polarity selects whether a predicate reads a fuzzy cell directly or negated.
type Polarity int

const (
	Is Polarity = iota
	IsNot
)

func (p Polarity) String() string {
	switch p {
	case Is:
		return "IS"
	case IsNot:
		return "IS NOT"
	default:
		return fmt.Sprintf("Polarity(%d)", int(p))
	}
}

// ParsePolarity accepts "is", "isnot", "is not" and "is_not".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), " ") {
	case "is":
		return Is, nil
	case "isnot", "is not":
		return IsNot, nil
	}
	return 0, fmt.Errorf("%w: unknown polarity %q", ErrInvalidRule, s)
}

// #endregion polarity

// #region connective
// Connective combines the two predicates of a logical rule.
type Connective int

const (
	And Connective = iota
	Or
)

func (c Connective) String() string {
	switch c {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return fmt.Sprintf("Connective(%d)", int(c))
	}
}

// ParseConnective accepts "and" or "or" in any case.
func ParseConnective(s string) (Connective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return And, nil
	case "or":
		return Or, nil
	}
	return 0, fmt.Errorf("%w: unknown connective %q", ErrInvalidRule, s)
}

// #endregion connective

// #region predicate
// Predicate is an atomic condition on one input variable.
type Predicate struct {
	Input    fuzzy.Input
	Polarity Polarity
	State    fuzzy.State
}

// Resolve reads the predicate's degree from a fuzzy input set. IsNot reads
// the negated number's cell.
func (p Predicate) Resolve(set *fuzzy.InputSet) float64 {
	n := set.Get(p.Input)
	if p.Polarity == IsNot {
		n = fuzzy.Negate(n)
	}
	return n.At(p.State)
}

func (p Predicate) validate() error {
	var errs []error
	if !p.Input.Valid() {
		errs = append(errs, fmt.Errorf("%w: %w: %v", ErrInvalidRule, fuzzy.ErrUnknownInput, p.Input))
	}
	if p.Polarity != Is && p.Polarity != IsNot {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidRule, p.Polarity))
	}
	if !p.State.Valid() {
		errs = append(errs, fmt.Errorf("%w: %w: %v", ErrInvalidRule, fuzzy.ErrUnknownState, p.State))
	}
	return errors.Join(errs...)
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Input, p.Polarity, p.State)
}

// #endregion predicate

// #region consequent
// Consequent names the output cell a rule writes its activation into.
type Consequent struct {
	Output fuzzy.Output
	State  fuzzy.State
}

func (c Consequent) validate() error {
	var errs []error
	if !c.Output.Valid() {
		errs = append(errs, fmt.Errorf("%w: %w: %v", ErrInvalidRule, fuzzy.ErrUnknownOutput, c.Output))
	}
	if !c.State.Valid() {
		errs = append(errs, fmt.Errorf("%w: %w: %v", ErrInvalidRule, fuzzy.ErrUnknownState, c.State))
	}
	return errors.Join(errs...)
}

func (c Consequent) String() string {
	return fmt.Sprintf("%s IS %s", c.Output, c.State)
}

// #endregion consequent

// #region rules
// Rule is either a SimpleRule or a LogicalRule.
type Rule interface {
	Activation(set *fuzzy.InputSet) float64
	Target() Consequent
	String() string
}

// SimpleRule is predicate => consequent.
type SimpleRule struct {
	When Predicate
	Then Consequent
}

// Activation is the predicate's degree.
func (r SimpleRule) Activation(set *fuzzy.InputSet) float64 {
	return r.When.Resolve(set)
}

// Target is the consequent cell.
func (r SimpleRule) Target() Consequent {
	return r.Then
}

func (r SimpleRule) String() string {
	return fmt.Sprintf("IF %s THEN %s", r.When, r.Then)
}

// LogicalRule is (left op right) => consequent.
type LogicalRule struct {
	Left       Predicate
	Connective Connective
	Right      Predicate
	Then       Consequent
}

// Activation combines both predicate degrees: min for And, max for Or.
func (r LogicalRule) Activation(set *fuzzy.InputSet) float64 {
	a1 := r.Left.Resolve(set)
	a2 := r.Right.Resolve(set)
	if r.Connective == Or {
		return max(a1, a2)
	}
	return min(a1, a2)
}

// Target is the consequent cell.
func (r LogicalRule) Target() Consequent {
	return r.Then
}

func (r LogicalRule) String() string {
	return fmt.Sprintf("IF %s %s %s THEN %s", r.Left, r.Connective, r.Right, r.Then)
}

// RuleBase holds the two unordered rule collections.
type RuleBase struct {
	Simple  []SimpleRule
	Logical []LogicalRule
}

// Len is the total number of rules.
func (rb RuleBase) Len() int {
	return len(rb.Simple) + len(rb.Logical)
}

// Add appends r to the matching collection.
func (rb *RuleBase) Add(r Rule) {
	switch r := r.(type) {
	case SimpleRule:
		rb.Simple = append(rb.Simple, r)
	case LogicalRule:
		rb.Logical = append(rb.Logical, r)
	}
}

// All lists simple rules first, then logical rules.
func (rb RuleBase) All() []Rule {
	out := make([]Rule, 0, rb.Len())
	for _, r := range rb.Simple {
		out = append(out, r)
	}
	for _, r := range rb.Logical {
		out = append(out, r)
	}
	return out
}

// Validate checks every rule and reports all problems at once.
func (rb RuleBase) Validate() error {
	var errs []error
	for i, r := range rb.Simple {
		if err := errors.Join(r.When.validate(), r.Then.validate()); err != nil {
			errs = append(errs, fmt.Errorf("simple rule %d: %w", i, err))
		}
	}
	for i, r := range rb.Logical {
		var connErr error
		if r.Connective != And && r.Connective != Or {
			connErr = fmt.Errorf("%w: %v", ErrInvalidRule, r.Connective)
		}
		if err := errors.Join(r.Left.validate(), connErr, r.Right.validate(), r.Then.validate()); err != nil {
			errs = append(errs, fmt.Errorf("logical rule %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// #endregion rules
