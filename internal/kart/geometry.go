package kart

import "math"

// Vec2 is a direction on the track plane (world x and z).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) length() float64 { return math.Hypot(v.X, v.Y) }

// Neg returns -v.
func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

// Angle is the unsigned angle between a and b in degrees; 0 if either is zero.
func Angle(a, b Vec2) float64 {
	den := a.length() * b.length()
	if den < 1e-15 {
		return 0
	}
	cos := (a.X*b.X + a.Y*b.Y) / den
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// SignedAngle is Angle with a sign: positive when to lies counter-clockwise
// from from. A zero cross product counts as positive.
func SignedAngle(from, to Vec2) float64 {
	a := Angle(from, to)
	if from.X*to.Y-from.Y*to.X < 0 {
		return -a
	}
	return a
}

// SurfaceAngle is the angle in degrees between the reversed kart heading and
// the surface normal, positive when the surface faces to the kart's right.
func SurfaceAngle(heading, normal Vec2) float64 {
	return -SignedAngle(normal, heading.Neg())
}
