package frame

import "math"

// Axis ranges.
const (
	AxisRawMax   = 200
	AxisValueMin = -100
	AxisValueMax = 100
)

// mapRange linearly maps x from [inMin, inMax] to [outMin, outMax] using
// integer arithmetic, truncating toward zero.
func mapRange(x, inMin, inMax, outMin, outMax int) int {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Remap converts a raw axis byte (0..200, center 100) to -100..100.
// Values above 200 saturate.
func Remap(raw byte) int8 {
	x := int(raw)
	if x > AxisRawMax {
		x = AxisRawMax
	}
	return int8(mapRange(x, 0, AxisRawMax, AxisValueMin, AxisValueMax))
}

// AxisByte converts a normalized axis value (-1.0..1.0) to its raw byte.
// Out of range values saturate, the fraction is truncated.
// The math is done in float32 so the byte matches controllers computing
// in single precision.
func AxisByte(v float64) byte {
	switch {
	case v < -1 || math.IsNaN(v):
		v = -1
	case v > 1:
		v = 1
	}
	return byte(int((float32(v) + 1) * 100))
}
