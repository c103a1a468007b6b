// Package denoise implements the edge-preserving cross-bilateral
// denoising kernel: four directional fans swept around each pixel,
// gated on surface-normal agreement and guided by intensity
// similarity over an albedo-demodulated signal.
package denoise

import "math"

// Radius is the half-width of the directional fan, fixed by design.
const Radius = 3

// CosMin is the minimum normal dot-product a tap must clear to
// contribute; below this the sweeping direction is killed.
const CosMin = 0.7

// Rho is the monotonicity threshold applied to the normal dot-product
// from the second ring of a direction outward.
const Rho = 1.01

// spatialScale and intensityScale are the exponent scales of the
// spatial and intensity Gaussians (see spec §4.5).
const (
	spatialScale   = -1.0 / (1.0 + 2.0*Radius)
	intensityScale = -1.0 / 25.0
)

// direction is one of the four cardinal sweep directions the fan is
// rotated into.
type direction int

const (
	dirDown direction = iota
	dirLeft
	dirUp
	dirRight
)

var directions = [4]direction{dirDown, dirLeft, dirUp, dirRight}

// rotate maps a ring coordinate (i, j) — i the radial distance, j the
// lateral offset within the ring — to a pixel-space (dx, dy) offset
// for the given direction. The four directions are successive 90°
// rotations of the same (i, j) vector, with down as the identity.
func rotate(d direction, i, j int) (dx, dy int) {
	switch d {
	case dirDown:
		return i, j
	case dirRight:
		return -j, i
	case dirLeft:
		return j, -i
	default: // dirUp
		return -i, -j
	}
}

// Redzone returns the number of pixels excluded from both ends of the
// linearised index range so that every tap of every valid origin
// stays in-bounds without a per-tap check.
func Redzone(width int) int {
	return Radius * (width + 1)
}

// ValidRange returns the linear index range [lo, hi) of origins the
// kernel will write, for an image of the given dimensions. The range
// is empty when the image is too small to hold a full fan.
func ValidRange(width, height int) (lo, hi int) {
	total := width * height
	lo = Redzone(width)
	hi = total - lo
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Demodulate divides color by albedo componentwise into dst. It is
// layout-agnostic: the same elementwise loop serves both the planar
// and the RGB-interleaved buffer shapes, since demodulation never
// looks at a neighbouring pixel.
func Demodulate(dst, color, albedo []float32) {
	for i := range dst {
		dst[i] = color[i] / albedo[i]
	}
}

// FilterPlanar runs the directional-fan kernel over a single colour
// channel. z holds the pre-demodulated intensity for that channel
// (color/albedo); albedo and dst are single-channel planes of the
// same layout. normals is always interleaved xyz, one triple per
// pixel, regardless of the colour layout in use.
func FilterPlanar(width, height int, dst, albedo, z, normals []float32) {
	total := width * height
	lo, hi := ValidRange(width, height)
	filterPlanarRange(width, total, lo, hi, dst, albedo, z, normals)
}

// FilterPlanarParallel is FilterPlanar tiled across tiles contiguous
// bands of the valid origin range (equal-length runs of origins, not
// aligned to rows), run on the teacher's
// own worker pool (exr.ParallelForWithError) rather than a hand-rolled
// one. Bands write disjoint dst entries and only read shared buffers,
// so no synchronization is required between them.
func FilterPlanarParallel(width, height, tiles int, dst, albedo, z, normals []float32) error {
	total := width * height
	lo, hi := ValidRange(width, height)
	return parallelRanges(lo, hi, tiles, func(a, b int) error {
		filterPlanarRange(width, total, a, b, dst, albedo, z, normals)
		return nil
	})
}

func filterPlanarRange(width, total, lo, hi int, dst, albedo, z, normals []float32) {
	if lo < 0 {
		lo = 0
	}
	if hi > total {
		hi = total
	}
	for origin := lo; origin < hi; origin++ {
		zOrigin := z[origin]
		value := zOrigin
		weight := float32(1)

		oi := origin * 3
		nOriginX, nOriginY, nOriginZ := normals[oi], normals[oi+1], normals[oi+2]

		for _, d := range directions {
			nPrevX, nPrevY, nPrevZ := nOriginX, nOriginY, nOriginZ
			var ndotPrev float32

		ring:
			for i := 1; i <= Radius; i++ {
				for j := -i; j < i; j++ {
					dx, dy := rotate(d, i, j)
					offset := origin + dy*width + dx

					oj := offset * 3
					nx, ny, nz := normals[oj], normals[oj+1], normals[oj+2]
					ndot := nPrevX*nx + nPrevY*ny + nPrevZ*nz

					if ndot < CosMin {
						break ring
					}
					if i > 1 && (ndot > Rho*ndotPrev || ndotPrev > Rho*ndot) {
						break ring
					}

					gDist := float32(math.Exp(float64(i*i+j*j) * spatialScale))
					delta := z[offset] - zOrigin
					gInt := fastExp(delta * delta * intensityScale)
					w := gDist * gInt

					value += z[offset] * w
					weight += w

					if j == 0 {
						nPrevX, nPrevY, nPrevZ = nx, ny, nz
						ndotPrev = ndot
					}
				}
			}
		}

		dst[origin] = albedo[origin] * value / weight
	}
}

// FilterInterleaved is the RGB-triple layout variant: color, albedo,
// z and dst are interleaved "RGB RGB ..." over pixels. Normal gating
// and the spatial Gaussian are computed once per tap and shared
// across the three channels; only the intensity term and the
// accumulators are per-channel.
func FilterInterleaved(width, height int, dst, albedo, z, normals []float32) {
	total := width * height
	lo, hi := ValidRange(width, height)
	filterInterleavedRange(width, total, lo, hi, dst, albedo, z, normals)
}

// FilterInterleavedParallel is FilterInterleaved tiled the same way
// as FilterPlanarParallel.
func FilterInterleavedParallel(width, height, tiles int, dst, albedo, z, normals []float32) error {
	total := width * height
	lo, hi := ValidRange(width, height)
	return parallelRanges(lo, hi, tiles, func(a, b int) error {
		filterInterleavedRange(width, total, a, b, dst, albedo, z, normals)
		return nil
	})
}

func filterInterleavedRange(width, total, lo, hi int, dst, albedo, z, normals []float32) {
	if lo < 0 {
		lo = 0
	}
	if hi > total {
		hi = total
	}
	for origin := lo; origin < hi; origin++ {
		oi := origin * 3
		var value [3]float32
		value[0], value[1], value[2] = z[oi], z[oi+1], z[oi+2]
		weight := [3]float32{1, 1, 1}

		nOriginX, nOriginY, nOriginZ := normals[oi], normals[oi+1], normals[oi+2]

		for _, d := range directions {
			nPrevX, nPrevY, nPrevZ := nOriginX, nOriginY, nOriginZ
			var ndotPrev float32

		ring:
			for i := 1; i <= Radius; i++ {
				for j := -i; j < i; j++ {
					dx, dy := rotate(d, i, j)
					offset := origin + dy*width + dx

					oj := offset * 3
					nx, ny, nz := normals[oj], normals[oj+1], normals[oj+2]
					ndot := nPrevX*nx + nPrevY*ny + nPrevZ*nz

					if ndot < CosMin {
						break ring
					}
					if i > 1 && (ndot > Rho*ndotPrev || ndotPrev > Rho*ndot) {
						break ring
					}

					gDist := float32(math.Exp(float64(i*i+j*j) * spatialScale))
					for c := 0; c < 3; c++ {
						delta := z[oj+c] - z[oi+c]
						gInt := fastExp(delta * delta * intensityScale)
						w := gDist * gInt
						value[c] += z[oj+c] * w
						weight[c] += w
					}

					if j == 0 {
						nPrevX, nPrevY, nPrevZ = nx, ny, nz
						ndotPrev = ndot
					}
				}
			}
		}

		dst[oi] = albedo[oi] * value[0] / weight[0]
		dst[oi+1] = albedo[oi+1] * value[1] / weight[1]
		dst[oi+2] = albedo[oi+2] * value[2] / weight[2]
	}
}
