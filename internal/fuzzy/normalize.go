package fuzzy

import "math"

// #region normalize
// Normalize maps v from [min,max] onto [-1,1], clamping out-of-range values.
func Normalize(min, max, v float64) float64 {
	return inverseLerp(min, max, v)*2 - 1
}

// NormalizeUneven maps v onto [-1,1] where neutral, not the midpoint, maps to 0.
// Values below neutral scale over [min,neutral] into [-1,0], values above over
// [neutral,max] into [0,1].
func NormalizeUneven(min, neutral, max, v float64) float64 {
	switch {
	case v < neutral:
		return inverseLerp(min, neutral, v) - 1
	case v > neutral:
		return inverseLerp(neutral, max, v)
	default:
		return 0
	}
}

// #endregion normalize

// #region denormalize
// Denormalize projects n from [-1,1] back onto [min,max]. The NaN sentinel is
// returned unchanged.
func Denormalize(min, max, n float64) float64 {
	if !ValidInstruction(n) {
		return n
	}
	t := (clamp(n, -1, 1) + 1) / 2
	return lerp(min, max, t)
}

// DenormalizeUneven is the inverse of NormalizeUneven. The NaN sentinel is
// returned unchanged.
func DenormalizeUneven(min, neutral, max, n float64) float64 {
	if !ValidInstruction(n) {
		return n
	}
	switch {
	case n < 0:
		return lerp(min, neutral, clamp(n, -1, 0)+1)
	case n > 0:
		return lerp(neutral, max, clamp(n, 0, 1))
	default:
		return neutral
	}
}

// #endregion denormalize

// #region helpers
// inverseLerp returns where v sits between a and b, clamped to [0,1].
// A degenerate range yields 0.
func inverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return clamp((v-a)/(b-a), 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*clamp(t, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// #endregion helpers
