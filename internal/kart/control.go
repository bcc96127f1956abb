package kart

import "github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"

// Command is what the kart's drive system consumes. An axis without a
// decision is 0 with its flag cleared, never NaN.
type Command struct {
	Drive      float64 `json:"drive"`
	Turn       float64 `json:"turn"`
	DriveValid bool    `json:"drive_valid"`
	TurnValid  bool    `json:"turn_valid"`
}

// FromOutput maps ForwardBackwards to Drive and LeftRight to Turn.
func FromOutput(out fuzzy.CrispOutput) Command {
	var c Command
	if out.Valid(fuzzy.ForwardBackwards) {
		c.Drive, c.DriveValid = out.Get(fuzzy.ForwardBackwards), true
	}
	if out.Valid(fuzzy.LeftRight) {
		c.Turn, c.TurnValid = out.Get(fuzzy.LeftRight), true
	}
	return c
}
