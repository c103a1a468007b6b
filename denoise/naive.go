package denoise

import "math"

// NaiveFilter is a second, independent implementation of the same
// directional-fan kernel, written straightforwardly rather than for
// speed: it demodulates into its own buffer up front and remultiplies
// by albedo in a separate pass afterward, instead of fusing the
// remultiply into the store. Used only by tests, as a cross-check that
// FilterPlanar's fused, redzone-addressed version agrees with the spec's
// algorithm to within tolerance.
func NaiveFilter(width, height int, color, albedo, normals []float32) []float32 {
	total := width * height
	z := make([]float32, total)
	for p := 0; p < total; p++ {
		z[p] = color[p] / albedo[p]
	}

	out := make([]float32, total)
	lo, hi := ValidRange(width, height)

	for origin := lo; origin < hi; origin++ {
		value := z[origin]
		weight := float32(1)

		oi := origin * 3
		nOrigin := [3]float32{normals[oi], normals[oi+1], normals[oi+2]}

		for _, d := range directions {
			nPrev := nOrigin
			var ndotPrev float32
			killed := false

			for i := 1; i <= Radius && !killed; i++ {
				for j := -i; j < i; j++ {
					dx, dy := rotate(d, i, j)
					offset := origin + dy*width + dx
					oj := offset * 3
					nHere := [3]float32{normals[oj], normals[oj+1], normals[oj+2]}

					ndot := nPrev[0]*nHere[0] + nPrev[1]*nHere[1] + nPrev[2]*nHere[2]
					if ndot < CosMin {
						killed = true
						break
					}
					if i > 1 && (ndot > Rho*ndotPrev || ndotPrev > Rho*ndot) {
						killed = true
						break
					}

					dist2 := float64(i*i + j*j)
					gDist := float32(math.Exp(dist2 * spatialScale))
					delta := z[offset] - z[origin]
					gInt := fastExp(delta * delta * intensityScale)
					w := gDist * gInt

					value += z[offset] * w
					weight += w

					if j == 0 {
						nPrev = nHere
						ndotPrev = ndot
					}
				}
			}
		}

		out[origin] = value / weight
	}

	for p := lo; p < hi; p++ {
		out[p] *= albedo[p]
	}
	return out
}
