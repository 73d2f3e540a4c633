package transform

import "math"

// MaxPace is the magnitude at which a pace value is considered garbage
const MaxPace = 10000

// ScalePercent normalises a percentage to a 0..1 fraction. Values above 1
// are assumed to be on a 0..100 scale.
func ScalePercent(f float64) float64 {
	if f > 1 {
		return f / 100
	}
	return f
}

// ScalePIE normalises player impact estimate, which upstream reports either
// as a fraction, a percentage, or in basis points.
func ScalePIE(f float64) float64 {
	switch {
	case f > 100:
		return f / 10000
	case f > 1:
		return f / 100
	default:
		return f
	}
}

// ClampPace returns pace unchanged unless its magnitude reaches MaxPace, in
// which case the value is dropped.
func ClampPace(f float64) (float64, bool) {
	if math.Abs(f) >= MaxPace {
		return 0, false
	}
	return f, true
}
