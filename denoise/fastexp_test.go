package denoise

import (
	"math"
	"testing"
)

func TestFastExpMonotonic(t *testing.T) {
	prev := float32(math.Inf(1))
	for x := float32(0); x > -20; x -= 0.25 {
		v := fastExp(x)
		if v > prev {
			t.Fatalf("fastExp not monotonically non-increasing at x=%v: %v > %v", x, v, prev)
		}
		prev = v
	}
}

func TestFastExpZeroIsOne(t *testing.T) {
	got := fastExp(0)
	if !almostEqual(got, 1, 0.05) {
		t.Fatalf("fastExp(0) = %v, want approx 1", got)
	}
}

func TestFastExpApproximatesRealExp(t *testing.T) {
	for _, x := range []float32{-0.1, -1, -2, -4, -8} {
		got := fastExp(x)
		want := float32(math.Exp(float64(x)))
		if !almostEqual(got, want, 0.15*want+0.02) {
			t.Fatalf("fastExp(%v) = %v, want approx %v", x, got, want)
		}
	}
}
