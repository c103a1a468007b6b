package denoise

import "math"

// fastExpScaleA and fastExpScaleB are the bit-reinterpretation
// approximation constants for exp(x), x <= 0: a linear function of x
// is built so that its integer truncation lands in the IEEE-754
// exponent field and its fractional part approximates 2^frac in the
// mantissa field.
const (
	fastExpScaleA = float64(1<<23) / 0.69314718
	fastExpScaleB = float64(1<<23) * (127 - 0.043677448)
	fastExpMin    = float64(1 << 23)
	fastExpMax    = float64(1<<23) * 255
)

// fastExp approximates exp(x) via bit reinterpretation. It is accurate
// enough for the intensity-similarity Gaussian, where monotonicity and
// smoothness of the weight matter more than absolute precision.
func fastExp(x float32) float32 {
	y := fastExpScaleA*float64(x) + fastExpScaleB
	if y < fastExpMin {
		y = fastExpMin
	}
	if y > fastExpMax {
		y = fastExpMax
	}
	return math.Float32frombits(uint32(y))
}
