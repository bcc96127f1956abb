package kart

import "github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"

// Surface angles are normalized over this range.
const (
	MinSurfaceAngle = -90.0
	MaxSurfaceAngle = 90.0
)

// #region readings
// Readings are the raw values a kart's sensors produce in one tick. A nil
// distance or normal means the ray hit nothing.
type Readings struct {
	Speed         float64  `json:"speed"`
	Heading       Vec2     `json:"heading"`
	Forward       *float64 `json:"forward,omitempty"`
	Right         *float64 `json:"right,omitempty"`
	Left          *float64 `json:"left,omitempty"`
	ForwardNormal *Vec2    `json:"forward_normal,omitempty"`
}

// Raw holds readings with "no hit" replaced by sentinels: -1 for distances,
// 0 for the surface angle (degrees).
type Raw struct {
	Speed        float64
	Forward      float64
	Right        float64
	Left         float64
	SurfaceAngle float64
}

// Raw resolves missing readings to their sentinels.
func (r Readings) Raw() Raw {
	return Raw{
		Speed:        r.Speed,
		Forward:      orMissing(r.Forward),
		Right:        orMissing(r.Right),
		Left:         orMissing(r.Left),
		SurfaceAngle: r.surfaceAngle(),
	}
}

func (r Readings) surfaceAngle() float64 {
	if r.ForwardNormal == nil {
		return 0
	}
	return SurfaceAngle(r.Heading, *r.ForwardNormal)
}

func orMissing(d *float64) float64 {
	if d == nil {
		return -1
	}
	return *d
}

// #endregion readings

// #region scales
// Scales are the sensor values that map to 0 (neutral) and 1 (large/high)
// after normalization.
type Scales struct {
	HighSpeed      float64 `yaml:"high_speed"`
	NeutralSpeed   float64 `yaml:"neutral_speed"`
	LargeForward   float64 `yaml:"large_forward"`
	NeutralForward float64 `yaml:"neutral_forward"`
	LargeRight     float64 `yaml:"large_right"`
	NeutralRight   float64 `yaml:"neutral_right"`
	LargeLeft      float64 `yaml:"large_left"`
	NeutralLeft    float64 `yaml:"neutral_left"`
}

// DefaultScales matches a kart with a 10 m/s top speed and 10 m rays.
func DefaultScales() Scales {
	return Scales{
		HighSpeed:    10,
		LargeForward: 10,
		LargeRight:   10,
		LargeLeft:    10,
	}
}

// Input normalizes one tick of readings. Speed and distances use uneven
// normalization with -1 as the lower bound; a missing distance is -1 and a
// missing surface is 0.
func (s Scales) Input(r Readings) fuzzy.CrispInput {
	var in fuzzy.CrispInput
	in.Set(fuzzy.Speed, fuzzy.NormalizeUneven(-1, s.NeutralSpeed, s.HighSpeed, r.Speed))
	in.Set(fuzzy.ForwardDistance, distance(r.Forward, s.NeutralForward, s.LargeForward))
	in.Set(fuzzy.RightDistance, distance(r.Right, s.NeutralRight, s.LargeRight))
	in.Set(fuzzy.LeftDistance, distance(r.Left, s.NeutralLeft, s.LargeLeft))
	if r.ForwardNormal != nil {
		in.Set(fuzzy.ForwardSurfaceNormal, fuzzy.Normalize(MinSurfaceAngle, MaxSurfaceAngle, r.surfaceAngle()))
	}
	return in
}

func distance(d *float64, neutral, large float64) float64 {
	if d == nil {
		return -1
	}
	return fuzzy.NormalizeUneven(-1, neutral, large, *d)
}

// #endregion scales
