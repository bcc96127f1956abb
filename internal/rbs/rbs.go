package rbs

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/kart"
)

// Env is what rule conditions see: raw sensor values, distances in metres
// (-1 when nothing was hit) and the surface angle in degrees.
type Env struct {
	Speed   float64 `expr:"speed"`
	Forward float64 `expr:"forward"`
	Right   float64 `expr:"right"`
	Left    float64 `expr:"left"`
	Surface float64 `expr:"surface"`
}

// EnvOf copies raw readings into an Env.
func EnvOf(r kart.Raw) Env {
	return Env{Speed: r.Speed, Forward: r.Forward, Right: r.Right, Left: r.Left, Surface: r.SurfaceAngle}
}

// Rule votes Turn whenever its condition holds.
type Rule struct {
	Name         string
	ConditionSrc string
	Turn         float64
	program      *vm.Program
}

// DefaultRules steer away from walls ahead by the surface angle and away from
// close side walls.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "far-wall-faces-left", ConditionSrc: "forward >= 5 && surface < 0", Turn: -1},
		{Name: "near-wall-faces-left", ConditionSrc: "forward >= 0 && forward < 2.5 && surface < 0", Turn: -1},
		{Name: "far-wall-faces-right", ConditionSrc: "forward >= 5 && surface > 0", Turn: 1},
		{Name: "near-wall-faces-right", ConditionSrc: "forward >= 0 && forward < 2.5 && surface > 0", Turn: 1},
		{Name: "right-wall-close", ConditionSrc: "(right < 1.25 && right > -0.1) || left < -0.9", Turn: -1},
		{Name: "left-wall-close", ConditionSrc: "(left < 1.25 && left > -0.1) || right < -0.9", Turn: 1},
	}
}

// Controller is the crisp rule-based baseline.
type Controller struct {
	rules []Rule
}

// New compiles every rule condition.
func New(rules []Rule) (*Controller, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
		compiled[i] = r
	}
	return &Controller{rules: compiled}, nil
}

// Default returns a controller over DefaultRules.
func Default() *Controller {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Instructions averages the turn votes of every rule that holds (0 when none
// do) and always drives forward. It also returns the names of those rules.
func (c *Controller) Instructions(r kart.Raw) (kart.Command, []string, error) {
	env := EnvOf(r)
	var sum float64
	var fired []string
	for _, rule := range c.rules {
		out, err := vm.Run(rule.program, env)
		if err != nil {
			return kart.Command{}, nil, fmt.Errorf("run rule %q: %w", rule.Name, err)
		}
		if out.(bool) {
			sum += rule.Turn
			fired = append(fired, rule.Name)
		}
	}
	turn := 0.0
	if len(fired) > 0 {
		turn = sum / float64(len(fired))
	}
	return kart.Command{Drive: 1, Turn: turn, DriveValid: true, TurnValid: true}, fired, nil
}
