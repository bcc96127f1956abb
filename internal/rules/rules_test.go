package rules

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

func inputSet() *fuzzy.InputSet {
	var set fuzzy.InputSet
	set[fuzzy.Speed].Set(fuzzy.LP, 0.8)
	set[fuzzy.ForwardDistance].Set(fuzzy.MN, 0.3)
	return &set
}

// #region predicate-tests
func TestPredicate_Resolve(t *testing.T) {
	set := inputSet()
	is := Predicate{Input: fuzzy.Speed, Polarity: Is, State: fuzzy.LP}
	if got := is.Resolve(set); got != 0.8 {
		t.Errorf("Is: expected 0.8, got %v", got)
	}
	not := Predicate{Input: fuzzy.Speed, Polarity: IsNot, State: fuzzy.LP}
	if got := not.Resolve(set); got < 0.2-1e-12 || got > 0.2+1e-12 {
		t.Errorf("IsNot: expected 0.2, got %v", got)
	}
	untouched := Predicate{Input: fuzzy.LeftDistance, Polarity: IsNot, State: fuzzy.Z}
	if got := untouched.Resolve(set); got != 1 {
		t.Errorf("IsNot on zero cell: expected 1, got %v", got)
	}
}

// #endregion predicate-tests

// #region activation-tests
// 1. And is min, Or is max.
func TestLogicalRule_Activation(t *testing.T) {
	set := inputSet()
	r := LogicalRule{
		Left:       Predicate{Input: fuzzy.Speed, Polarity: Is, State: fuzzy.LP},
		Connective: And,
		Right:      Predicate{Input: fuzzy.ForwardDistance, Polarity: Is, State: fuzzy.MN},
		Then:       Consequent{Output: fuzzy.ForwardBackwards, State: fuzzy.MN},
	}
	if got := r.Activation(set); got != 0.3 {
		t.Errorf("And: expected 0.3, got %v", got)
	}
	r.Connective = Or
	if got := r.Activation(set); got != 0.8 {
		t.Errorf("Or: expected 0.8, got %v", got)
	}
}

// 2. A simple rule activates with its predicate's degree.
func TestSimpleRule_Activation(t *testing.T) {
	r := SimpleRule{
		When: Predicate{Input: fuzzy.ForwardDistance, Polarity: Is, State: fuzzy.MN},
		Then: Consequent{Output: fuzzy.LeftRight, State: fuzzy.LP},
	}
	if got := r.Activation(inputSet()); got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
	if r.Target() != r.Then {
		t.Error("Target should be the consequent")
	}
}

// #endregion activation-tests

// #region validate-tests
func TestRuleBase_Validate(t *testing.T) {
	good := RuleBase{
		Simple: []SimpleRule{{
			When: Predicate{Input: fuzzy.Speed, State: fuzzy.Z},
			Then: Consequent{Output: fuzzy.ForwardBackwards, State: fuzzy.LP},
		}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid rule base, got %v", err)
	}

	bad := RuleBase{
		Simple: []SimpleRule{{
			When: Predicate{Input: fuzzy.Input(7), State: fuzzy.Z},
			Then: Consequent{Output: fuzzy.ForwardBackwards, State: fuzzy.State(9)},
		}},
		Logical: []LogicalRule{{
			Left:       Predicate{Input: fuzzy.Speed, State: fuzzy.Z},
			Connective: Connective(5),
			Right:      Predicate{Input: fuzzy.Speed, State: fuzzy.Z},
			Then:       Consequent{Output: fuzzy.Output(3), State: fuzzy.Z},
		}},
	}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	for _, want := range []error{fuzzy.ErrUnknownInput, fuzzy.ErrUnknownState, fuzzy.ErrUnknownOutput} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestRuleBase_AddAndAll(t *testing.T) {
	var rb RuleBase
	rb.Add(SimpleRule{})
	rb.Add(LogicalRule{Connective: Or})
	rb.Add(SimpleRule{})
	if len(rb.Simple) != 2 || len(rb.Logical) != 1 || rb.Len() != 3 {
		t.Fatalf("unexpected split: %d simple, %d logical", len(rb.Simple), len(rb.Logical))
	}
	all := rb.All()
	if _, ok := all[2].(LogicalRule); !ok {
		t.Errorf("expected logical rules after simple rules, got %T", all[2])
	}
}

// #endregion validate-tests

// #region parse-tests
func TestParseRule_Simple(t *testing.T) {
	r, err := ParseRule("if speed is lp then ForwardBackwards is z")
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	want := SimpleRule{
		When: Predicate{Input: fuzzy.Speed, Polarity: Is, State: fuzzy.LP},
		Then: Consequent{Output: fuzzy.ForwardBackwards, State: fuzzy.Z},
	}
	if r != want {
		t.Fatalf("expected %v, got %v", want, r)
	}
}

func TestParseRule_LogicalRoundTrip(t *testing.T) {
	text := "IF ForwardDistance IS NOT LP AND LeftDistance IS MP THEN LeftRight IS MN"
	r, err := ParseRule(text)
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	lr, ok := r.(LogicalRule)
	if !ok {
		t.Fatalf("expected LogicalRule, got %T", r)
	}
	if lr.Left.Polarity != IsNot || lr.Connective != And || lr.Right.Input != fuzzy.LeftDistance {
		t.Errorf("unexpected parse: %+v", lr)
	}
	if lr.String() != text {
		t.Errorf("round trip: expected %q, got %q", text, lr.String())
	}
}

func TestParseRule_Errors(t *testing.T) {
	cases := []string{
		"",
		"Speed IS LP THEN LeftRight IS Z",
		"IF Altitude IS LP THEN LeftRight IS Z",
		"IF Speed IS XL THEN LeftRight IS Z",
		"IF Speed IS LP THEN Brake IS Z",
		"IF Speed IS LP XOR Speed IS Z THEN LeftRight IS Z",
		"IF Speed IS LP THEN LeftRight IS Z extra",
		"IF Speed LP THEN LeftRight IS Z",
	}
	for _, text := range cases {
		if _, err := ParseRule(text); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("%q: expected ErrInvalidRule, got %v", text, err)
		}
	}
}

func TestParseRules_CollectsErrors(t *testing.T) {
	rb, err := ParseRules([]string{
		"IF Speed IS LP THEN ForwardBackwards IS MP",
		"IF Speed IS ?? THEN ForwardBackwards IS MP",
		"IF Speed IS Z OR Speed IS MN THEN LeftRight IS Z",
	})
	if err == nil {
		t.Fatal("expected error for the malformed line")
	}
	if rb.Len() != 2 {
		t.Errorf("expected 2 parsed rules, got %d", rb.Len())
	}
}

func TestParsePolarityAndConnective(t *testing.T) {
	for _, s := range []string{"isnot", "is not", "IS_NOT", "Is  Not"} {
		if p, err := ParsePolarity(s); err != nil || p != IsNot {
			t.Errorf("ParsePolarity(%q) = %v, %v", s, p, err)
		}
	}
	if p, err := ParsePolarity("is"); err != nil || p != Is {
		t.Errorf("ParsePolarity(is) = %v, %v", p, err)
	}
	if _, err := ParsePolarity("maybe"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
	if c, err := ParseConnective("Or"); err != nil || c != Or {
		t.Errorf("ParseConnective(Or) = %v, %v", c, err)
	}
}

// #endregion parse-tests
