package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region parse
// ParseRule reads the compact text form produced by String:
//
//	IF ForwardDistance IS NOT LP AND Speed IS MP THEN ForwardBackwards IS MN
//
// Keywords are case-insensitive.
func ParseRule(text string) (Rule, error) {
	toks := strings.Fields(text)
	p := &ruleParser{toks: toks, text: text}

	if err := p.keyword("IF"); err != nil {
		return nil, err
	}
	left, err := p.predicate()
	if err != nil {
		return nil, err
	}

	var (
		logical bool
		conn    Connective
		right   Predicate
	)
	if p.peekIs("AND") || p.peekIs("OR") {
		conn, err = ParseConnective(p.next())
		if err != nil {
			return nil, err
		}
		right, err = p.predicate()
		if err != nil {
			return nil, err
		}
		logical = true
	}

	if err := p.keyword("THEN"); err != nil {
		return nil, err
	}
	then, err := p.consequent()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, p.fail("trailing tokens %q", strings.Join(p.toks[p.pos:], " "))
	}

	if logical {
		return LogicalRule{Left: left, Connective: conn, Right: right, Then: then}, nil
	}
	return SimpleRule{When: left, Then: then}, nil
}

// ParseRules parses one rule per entry into a RuleBase, collecting every error.
func ParseRules(lines []string) (RuleBase, error) {
	var rb RuleBase
	var errs []error
	for i, line := range lines {
		r, err := ParseRule(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		rb.Add(r)
	}
	return rb, errors.Join(errs...)
}

// #endregion parse

// #region parser
type ruleParser struct {
	toks []string
	pos  int
	text string
}

func (p *ruleParser) fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s in %q", ErrInvalidRule, fmt.Sprintf(format, args...), p.text)
}

func (p *ruleParser) next() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *ruleParser) peekIs(kw string) bool {
	return p.pos < len(p.toks) && strings.EqualFold(p.toks[p.pos], kw)
}

func (p *ruleParser) keyword(kw string) error {
	if !p.peekIs(kw) {
		return p.fail("expected %s at token %d", kw, p.pos)
	}
	p.pos++
	return nil
}

func (p *ruleParser) predicate() (Predicate, error) {
	in, err := fuzzy.ParseInput(p.next())
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if err := p.keyword("IS"); err != nil {
		return Predicate{}, err
	}
	pol := Is
	if p.peekIs("NOT") {
		p.pos++
		pol = IsNot
	}
	st, err := fuzzy.ParseState(p.next())
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return Predicate{Input: in, Polarity: pol, State: st}, nil
}

func (p *ruleParser) consequent() (Consequent, error) {
	out, err := fuzzy.ParseOutput(p.next())
	if err != nil {
		return Consequent{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if err := p.keyword("IS"); err != nil {
		return Consequent{}, err
	}
	st, err := fuzzy.ParseState(p.next())
	if err != nil {
		return Consequent{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return Consequent{Output: out, State: st}, nil
}

// #endregion parser
