package ruleset

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/defuzz"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rules"
)

// DefaultCurveSet is the curves key shared by every input without its own set.
const DefaultCurveSet = "default"

// #region document
// Document is the on-disk rule base: curve table, simple rules, logical rules
// and optional text rules.
type Document struct {
	Name        string                 `yaml:"name" toml:"name" json:"name" validate:"required"`
	Description string                 `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Method      string                 `yaml:"method,omitempty" toml:"method,omitempty" json:"method,omitempty" validate:"omitempty,fuzzy_method"`
	Curves      map[string]CurveSetDoc `yaml:"curves" toml:"curves" json:"curves" validate:"required,min=1,dive"`
	Simple      []SimpleRuleDoc        `yaml:"simple,omitempty" toml:"simple,omitempty" json:"simple,omitempty" validate:"dive"`
	Logical     []LogicalRuleDoc       `yaml:"logical,omitempty" toml:"logical,omitempty" json:"logical,omitempty" validate:"dive"`
	Rules       []string               `yaml:"rules,omitempty" toml:"rules,omitempty" json:"rules,omitempty" validate:"dive,required"`
}

// CurveSetDoc holds one curve per linguistic state.
type CurveSetDoc struct {
	LN *CurveDoc `yaml:"LN,omitempty" toml:"LN,omitempty" json:"LN,omitempty"`
	MN *CurveDoc `yaml:"MN,omitempty" toml:"MN,omitempty" json:"MN,omitempty"`
	Z  *CurveDoc `yaml:"Z,omitempty" toml:"Z,omitempty" json:"Z,omitempty"`
	MP *CurveDoc `yaml:"MP,omitempty" toml:"MP,omitempty" json:"MP,omitempty"`
	LP *CurveDoc `yaml:"LP,omitempty" toml:"LP,omitempty" json:"LP,omitempty"`
}

// CurveDoc is either a keyframe list of [x, degree] pairs or a constant.
type CurveDoc struct {
	Interpolation string      `yaml:"interpolation,omitempty" toml:"interpolation,omitempty" json:"interpolation,omitempty" validate:"omitempty,oneof=linear smooth"`
	Keys          [][]float64 `yaml:"keys,omitempty" toml:"keys,omitempty" json:"keys,omitempty" validate:"omitempty,dive,len=2"`
	Constant      *float64    `yaml:"constant,omitempty" toml:"constant,omitempty" json:"constant,omitempty"`
}

// PredicateDoc is (input, polarity, state). Polarity defaults to "is".
type PredicateDoc struct {
	Input    string `yaml:"input" toml:"input" json:"input" validate:"required,fuzzy_input"`
	Polarity string `yaml:"is,omitempty" toml:"is,omitempty" json:"is,omitempty" validate:"omitempty,fuzzy_polarity"`
	State    string `yaml:"state" toml:"state" json:"state" validate:"required,fuzzy_state"`
}

// SimpleRuleDoc is (input, polarity, state) -> (output, state).
type SimpleRuleDoc struct {
	Input    string `yaml:"input" toml:"input" json:"input" validate:"required,fuzzy_input"`
	Polarity string `yaml:"is,omitempty" toml:"is,omitempty" json:"is,omitempty" validate:"omitempty,fuzzy_polarity"`
	State    string `yaml:"state" toml:"state" json:"state" validate:"required,fuzzy_state"`
	Output   string `yaml:"output" toml:"output" json:"output" validate:"required,fuzzy_output"`
	Then     string `yaml:"then" toml:"then" json:"then" validate:"required,fuzzy_state"`
}

// LogicalRuleDoc is (predicate op predicate) -> (output, state).
type LogicalRuleDoc struct {
	Left   PredicateDoc `yaml:"left" toml:"left" json:"left"`
	Op     string       `yaml:"op" toml:"op" json:"op" validate:"required,fuzzy_connective"`
	Right  PredicateDoc `yaml:"right" toml:"right" json:"right"`
	Output string       `yaml:"output" toml:"output" json:"output" validate:"required,fuzzy_output"`
	Then   string       `yaml:"then" toml:"then" json:"then" validate:"required,fuzzy_state"`
}

// #endregion document

// #region validation
var docValidate = mustValidator(map[string]validator.Func{
	"fuzzy_input":      parses(fuzzy.ParseInput),
	"fuzzy_output":     parses(fuzzy.ParseOutput),
	"fuzzy_state":      parses(fuzzy.ParseState),
	"fuzzy_polarity":   parses(rules.ParsePolarity),
	"fuzzy_connective": parses(rules.ParseConnective),
	"fuzzy_method":     parses(defuzz.ParseMethod),
})

// newValidator returns a validator with every tag in tags registered.
func newValidator(tags map[string]validator.Func) (*validator.Validate, error) {
	v := validator.New()
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q: %w", tag, err)
		}
	}
	return v, nil
}

func mustValidator(tags map[string]validator.Func) *validator.Validate {
	v, err := newValidator(tags)
	if err != nil {
		panic(err)
	}
	return v
}

func parses[T any](parse func(string) (T, error)) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := parse(fl.Field().String())
		return err == nil
	}
}

// Validate checks the document's structure and names.
func (d *Document) Validate() error {
	return docValidate.Struct(d)
}

// #endregion validation

func (s CurveSetDoc) get(st fuzzy.State) *CurveDoc {
	switch st {
	case fuzzy.LN:
		return s.LN
	case fuzzy.MN:
		return s.MN
	case fuzzy.Z:
		return s.Z
	case fuzzy.MP:
		return s.MP
	case fuzzy.LP:
		return s.LP
	}
	return nil
}
