package replay

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
)

// #region fixture-tests

// TestFixture_KartDefault replays the hand-checked fixture against the
// built-in rule base. If curves or rules drift, this catches it.
func TestFixture_KartDefault(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "kart_default.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cases, err := f.ToCases()
	if err != nil {
		t.Fatalf("ToCases: %v", err)
	}

	doc, err := ruleset.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	p, err := doc.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	results := Replay(p, cases, f.Tolerance)
	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for _, r := range results {
		if r.Checked && !r.Match {
			t.Errorf("case %s: got %v, want %v", r.ID, r.Output, *r.Expected)
		}
	}

	s := Summarize(results)
	if s.Matched != 3 || s.Unchecked != 1 || s.Mismatched != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestFixture_WriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	want := fuzzy.CrispOutput{0.25, math.NaN()}
	f := &Fixture{
		Description: "round trip",
		Cases: []FixtureCase{
			NewFixtureCase("a", fuzzy.CrispInput{0.1, 0.2, 0.3, 0.4, 0.5}, &want),
			NewFixtureCase("b", fuzzy.CrispInput{}, nil),
		},
	}
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}

	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cases, err := got.ToCases()
	if err != nil {
		t.Fatalf("ToCases: %v", err)
	}
	if cases[0].Input != (fuzzy.CrispInput{0.1, 0.2, 0.3, 0.4, 0.5}) {
		t.Errorf("input mismatch: %v", cases[0].Input)
	}
	if cases[0].Expected == nil || !Equal(*cases[0].Expected, want, 0) {
		t.Errorf("expected mismatch: %v", cases[0].Expected)
	}
	if cases[1].Expected != nil {
		t.Errorf("case without expectation should stay unchecked")
	}
}

func TestFixture_BadExpectedLength(t *testing.T) {
	one := 1.0
	fc := FixtureCase{ID: "x", Input: []float64{0}, Expected: []*float64{&one}}
	if _, err := fc.ToCase(); !errors.Is(err, fuzzy.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestFixture_TooManyInputs(t *testing.T) {
	f := &Fixture{Cases: []FixtureCase{{ID: "x", Input: make([]float64, fuzzy.NumInputs+1)}}}
	if _, err := f.ToCases(); !errors.Is(err, fuzzy.ErrTooManyValues) {
		t.Fatalf("expected ErrTooManyValues, got %v", err)
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing fixture file")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{not valid json"), 0644)

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

// #endregion fixture-tests
