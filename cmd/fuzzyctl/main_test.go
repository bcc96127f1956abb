package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/gate"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/rbs"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/ruleset"
)

const brakeDoc = `
name: brake-only
curves:
  default:
    LN: {constant: 0}
    MN: {constant: 0}
    Z:  {constant: 0}
    MP: {constant: 0}
    LP: {keys: [[0, 0], [1, 1]]}
rules:
  - IF Speed IS LP THEN ForwardBackwards IS LN
`

// #region helpers
type env struct {
	dir string
	db  string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, k := range []string{"FUZZY_DB", "FUZZY_RULES", "FUZZY_METHOD", "FUZZY_GRPC_ADDR", "FUZZY_METRICS_ADDR", "FUZZY_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	return env{dir: dir, db: filepath.Join(dir, "test.db")}
}

func (e env) write(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// run executes fuzzyctl with a missing config file (defaults) and the test db.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(e.dir, "none.yaml"), "--db", e.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// #endregion helpers

func TestParseInput(t *testing.T) {
	in, err := parseInput("0.5, -1,0.25")
	require.NoError(t, err)
	assert.Equal(t, fuzzy.CrispInput{0.5, -1, 0.25, 0, 0}, in)

	_, err = parseInput("1,2,3,4,5,6")
	require.ErrorIs(t, err, fuzzy.ErrTooManyValues)

	_, err = parseInput("1,fast")
	require.Error(t, err)
}

func TestImportCommitUnchangedReject(t *testing.T) {
	e := newEnv(t)
	rules := e.write(t, "rules.yaml", ruleset.DefaultSource())

	out, err := e.run(t, "import", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "committed kart-default")
	assert.Contains(t, out, "soft score")

	out, err = e.run(t, "import", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	out, err = e.run(t, "import", e.write(t, "brake.yaml", []byte(brakeDoc)))
	require.ErrorIs(t, err, orchestrator.ErrRejected)
	assert.Contains(t, out, "rejected: hard veto")
}

func TestImportJSON(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--json", "import", e.write(t, "rules.yaml", ruleset.DefaultSource()))
	require.NoError(t, err)

	var adm struct {
		Record   struct{ VersionID, Name string }
		Decision gate.GateDecision
	}
	require.NoError(t, json.Unmarshal([]byte(out), &adm))
	assert.Equal(t, "kart-default", adm.Record.Name)
	assert.NotEmpty(t, adm.Record.VersionID)
	assert.Equal(t, gate.ActionCommit, adm.Decision.Action)
}

func TestRollbackUnknownVersion(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "rollback", "does-not-exist")
	require.Error(t, err)
}

func TestRollback(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "--json", "import", e.write(t, "v1.yaml", ruleset.DefaultSource()))
	require.NoError(t, err)
	var first struct{ Record struct{ VersionID string } }
	require.NoError(t, json.Unmarshal([]byte(out), &first))

	v2 := bytes.Replace(ruleset.DefaultSource(), []byte("name: kart-default"), []byte("name: kart-v2"), 1)
	_, err = e.run(t, "import", e.write(t, "v2.yaml", v2))
	require.NoError(t, err)

	out, err = e.run(t, "rollback", first.Record.VersionID)
	require.NoError(t, err)
	assert.Contains(t, out, "active: "+first.Record.VersionID)
}

func TestEvalInput(t *testing.T) {
	e := newEnv(t)
	rules := e.write(t, "rules.yaml", ruleset.DefaultSource())

	out, err := e.run(t, "--json", "eval", rules, "--input", "0,-1,-1,-1,0")
	require.NoError(t, err)

	var got evalOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "act", got.Decision)
	require.NotNil(t, got.Output["ForwardBackwards"])
	assert.InDelta(t, 1, *got.Output["ForwardBackwards"], 1e-9)
	assert.True(t, got.Command.DriveValid)
	assert.NotEmpty(t, got.Fired)
}

func TestEvalRequiresInput(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "eval")
	require.Error(t, err)
	_, err = e.run(t, "eval", "--input", "0", "--readings", "{}")
	require.Error(t, err)
}

func TestEvalReadingsAgainstDefault(t *testing.T) {
	e := newEnv(t)
	// Empty store falls back to the built-in rule base.
	out, err := e.run(t, "eval", "--readings", `{"speed":0,"heading":{"x":0,"y":1}}`)
	require.NoError(t, err)
	assert.Contains(t, out, "decision: act")
}

func TestCoverage(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "--json", "coverage", e.write(t, "rules.yaml", ruleset.DefaultSource()))
	require.NoError(t, err)
	var got coverageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3125, got.Eval.Samples)
	assert.Equal(t, gate.ActionCommit, got.Decision.Action)

	out, err = e.run(t, "coverage", "--steps", "3", e.write(t, "brake.yaml", []byte(brakeDoc)))
	require.NoError(t, err)
	assert.Contains(t, out, "243 samples")
	assert.Contains(t, out, "gate: reject")

	// Raising the sweep's floor is enough to make the gate reject the default.
	out, err = e.run(t, "--json", "coverage", "--min-coverage", "0.99", e.write(t, "strict.yaml", ruleset.DefaultSource()))
	require.NoError(t, err)
	got = coverageOutput{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Eval.Passed)
	assert.Equal(t, gate.ActionReject, got.Decision.Action)
	assert.Equal(t, gate.VetoCoverage, got.Decision.VetoSignals[0].Type)
}

func TestCompare(t *testing.T) {
	doc, err := ruleset.Default()
	require.NoError(t, err)
	p, err := doc.Compile()
	require.NoError(t, err)

	lines := strings.Join([]string{
		`{"speed":0,"heading":{"x":0,"y":1}}`,
		``,
		`{"speed":0,"heading":{"x":0,"y":1}}`,
	}, "\n")
	rows, sum, err := compare(strings.NewReader(lines), p, rbs.Default(), kart.DefaultScales())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, sum.Ticks)
	assert.Equal(t, 2, sum.Agree)
	assert.Equal(t, 0, sum.FuzzyNoTurn)
	assert.InDelta(t, 0, sum.MeanTurnDiff, 1e-9)
	assert.Equal(t, []string{"right-wall-close", "left-wall-close"}, rows[0].Fired)

	_, _, err = compare(strings.NewReader("{not json"), p, rbs.Default(), kart.DefaultScales())
	require.Error(t, err)
}

func TestSign(t *testing.T) {
	assert.Equal(t, 0, sign(0.0005))
	assert.Equal(t, 1, sign(0.5))
	assert.Equal(t, -1, sign(-0.5))
}
