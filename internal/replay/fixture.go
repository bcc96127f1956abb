package replay

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	RuleBase    string        `json:"rule_base,omitempty"` // document path, relative to the fixture
	VersionID   string        `json:"version_id,omitempty"`
	Tolerance   float64       `json:"tolerance,omitempty"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one crisp input and, optionally, the output it must produce.
// A null expected value means "no decision" for that output.
type FixtureCase struct {
	ID       string     `json:"id"`
	Input    []float64  `json:"input"`
	Expected []*float64 `json:"expected,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToCases converts fixture cases to domain cases.
func (f *Fixture) ToCases() ([]Case, error) {
	cases := make([]Case, len(f.Cases))
	for i, fc := range f.Cases {
		c, err := fc.ToCase()
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, fc.ID, err)
		}
		cases[i] = c
	}
	return cases, nil
}

// ToCase converts a FixtureCase to a domain Case.
func (fc *FixtureCase) ToCase() (Case, error) {
	in, err := fuzzy.NewCrispInput(fc.Input)
	if err != nil {
		return Case{}, err
	}
	c := Case{ID: fc.ID, Input: in}
	if fc.Expected == nil {
		return c, nil
	}
	if len(fc.Expected) != fuzzy.NumOutputs {
		return Case{}, fmt.Errorf("%w: expected %d outputs, got %d",
			fuzzy.ErrLengthMismatch, fuzzy.NumOutputs, len(fc.Expected))
	}
	var want fuzzy.CrispOutput
	for i, v := range fc.Expected {
		if v == nil {
			want[i] = math.NaN()
			continue
		}
		want[i] = *v
	}
	c.Expected = &want
	return c, nil
}

// NewFixtureCase builds a fixture case, encoding NaN outputs as null.
func NewFixtureCase(id string, in fuzzy.CrispInput, expected *fuzzy.CrispOutput) FixtureCase {
	fc := FixtureCase{ID: id, Input: append([]float64(nil), in[:]...)}
	if expected != nil {
		fc.Expected = make([]*float64, fuzzy.NumOutputs)
		for i, v := range expected {
			if fuzzy.ValidInstruction(v) {
				v := v
				fc.Expected[i] = &v
			}
		}
	}
	return fc
}

// #endregion fixture-loader
