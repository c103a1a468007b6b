package denoise

import (
	"math"
	"testing"
)

const eps = 1e-4
const epsParallel = 1e-3

// uniformField fills a width*height single-channel plane with v.
func uniformField(total int, v float32) []float32 {
	p := make([]float32, total)
	for i := range p {
		p[i] = v
	}
	return p
}

// uniformNormals fills an interleaved xyz buffer with the same
// (nx, ny, nz) triple at every pixel.
func uniformNormals(total int, nx, ny, nz float32) []float32 {
	n := make([]float32, total*3)
	for i := 0; i < total; i++ {
		n[i*3], n[i*3+1], n[i*3+2] = nx, ny, nz
	}
	return n
}

func almostEqual(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// TestIdentityUnderConstantColor is property 1 of spec §8: a spatially
// constant input must reproduce itself, to within eps, at every valid
// origin.
func TestIdentityUnderConstantColor(t *testing.T) {
	w, h := 9, 9
	total := w * h
	color := uniformField(total, 0.5)
	albedo := uniformField(total, 0.5)
	normals := uniformNormals(total, 0, 0, 1)
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)

	FilterPlanar(w, h, dst, albedo, z, normals)

	lo, hi := ValidRange(w, h)
	for p := lo; p < hi; p++ {
		if !almostEqual(dst[p], 0.5, eps) {
			t.Fatalf("dst[%d] = %v, want 0.5", p, dst[p])
		}
	}
}

// TestAlbedoCancellation is property 2: scaling color and albedo by
// the same spatially-constant factor k leaves the demodulated signal
// unchanged, so the remodulated dst scales by exactly k.
func TestAlbedoCancellation(t *testing.T) {
	w, h := 9, 9
	total := w * h
	normals := uniformNormals(total, 0, 0, 1)

	run := func(k float32) []float32 {
		color := make([]float32, total)
		albedo := make([]float32, total)
		for i := 0; i < total; i++ {
			color[i] = (0.2 + 0.05*float32(i%5)) * k
			albedo[i] = 0.6 * k
		}
		z := make([]float32, total)
		Demodulate(z, color, albedo)
		dst := make([]float32, total)
		FilterPlanar(w, h, dst, albedo, z, normals)
		return dst
	}

	base := run(1.0)
	scaled := run(3.0)

	lo, hi := ValidRange(w, h)
	for p := lo; p < hi; p++ {
		if !almostEqual(base[p], scaled[p]/3, eps) {
			t.Fatalf("dst[%d] = %v, scaled dst[%d] = %v, want 3x", p, base[p], p, scaled[p])
		}
	}
}

// TestRedzoneInertness is property 4: the kernel must not touch any
// dst entry outside the valid range, and must not index past the ends
// of the underlying buffers (guarded implicitly: a bounds violation
// would panic the test).
func TestRedzoneInertness(t *testing.T) {
	w, h := 7, 7
	total := w * h
	color := uniformField(total, 0.5)
	albedo := uniformField(total, 0.5)
	normals := uniformNormals(total, 0, 0, 1)
	z := make([]float32, total)
	Demodulate(z, color, albedo)

	sentinel := float32(-999)
	dst := uniformField(total, sentinel)

	FilterPlanar(w, h, dst, albedo, z, normals)

	lo, hi := ValidRange(w, h)
	for p := 0; p < total; p++ {
		inRange := p >= lo && p < hi
		if !inRange && dst[p] != sentinel {
			t.Fatalf("dst[%d] modified outside valid range [%d,%d): %v", p, lo, hi, dst[p])
		}
	}
}

// TestWeightPositivityProducesFiniteOutput is property 5: the central
// tap alone guarantees weight >= 1, so output is always finite given
// finite input.
func TestWeightPositivityProducesFiniteOutput(t *testing.T) {
	w, h := 9, 9
	total := w * h
	color := make([]float32, total)
	albedo := uniformField(total, 0.7)
	normals := uniformNormals(total, 0, 0, 1)
	for i := range color {
		color[i] = 0.1 * float32(i%7)
	}
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)

	FilterPlanar(w, h, dst, albedo, z, normals)

	lo, hi := ValidRange(w, h)
	for p := lo; p < hi; p++ {
		if math.IsNaN(float64(dst[p])) || math.IsInf(float64(dst[p]), 0) {
			t.Fatalf("dst[%d] = %v, want finite", p, dst[p])
		}
	}
}

// TestParallelEquivalencePlanar is property 6: tile-partitioned
// execution must agree with single-threaded execution within the
// parallel tolerance.
func TestParallelEquivalencePlanar(t *testing.T) {
	w, h := 64, 64
	total := w * h
	color := make([]float32, total)
	albedo := make([]float32, total)
	normals := make([]float32, total*3)
	for i := 0; i < total; i++ {
		color[i] = 0.3 + 0.2*float32((i*7)%11)/11
		albedo[i] = 0.4 + 0.1*float32((i*3)%5)/5
		normals[i*3], normals[i*3+1], normals[i*3+2] = 0, 0, 1
	}
	z := make([]float32, total)
	Demodulate(z, color, albedo)

	seq := make([]float32, total)
	FilterPlanar(w, h, seq, albedo, z, normals)

	par := make([]float32, total)
	if err := FilterPlanarParallel(w, h, 8, par, albedo, z, normals); err != nil {
		t.Fatalf("FilterPlanarParallel: %v", err)
	}

	lo, hi := ValidRange(w, h)
	for p := lo; p < hi; p++ {
		if !almostEqual(seq[p], par[p], epsParallel) {
			t.Fatalf("dst[%d]: seq=%v par=%v", p, seq[p], par[p])
		}
	}
}

// TestLayoutEquivalence is S6: planar and interleaved variants of the
// same RGB input must agree within eps.
func TestLayoutEquivalence(t *testing.T) {
	w, h := 15, 15
	total := w * h
	normals := make([]float32, total*3)
	for i := 0; i < total; i++ {
		normals[i*3], normals[i*3+1], normals[i*3+2] = 0, 0, 1
	}

	color := make([]float32, total*3)
	albedo := make([]float32, total*3)
	for i := 0; i < total; i++ {
		for c := 0; c < 3; c++ {
			color[i*3+c] = 0.2 + 0.1*float32(c+1)*float32((i*13+c)%7)/7
			albedo[i*3+c] = 0.5 + 0.05*float32(c)
		}
	}

	zInter := make([]float32, total*3)
	Demodulate(zInter, color, albedo)
	dstInter := make([]float32, total*3)
	FilterInterleaved(w, h, dstInter, albedo, zInter, normals)

	for c := 0; c < 3; c++ {
		colorP := make([]float32, total)
		albedoP := make([]float32, total)
		for i := 0; i < total; i++ {
			colorP[i] = color[i*3+c]
			albedoP[i] = albedo[i*3+c]
		}
		zP := make([]float32, total)
		Demodulate(zP, colorP, albedoP)
		dstP := make([]float32, total)
		FilterPlanar(w, h, dstP, albedoP, zP, normals)

		lo, hi := ValidRange(w, h)
		for p := lo; p < hi; p++ {
			if !almostEqual(dstP[p], dstInter[p*3+c], eps) {
				t.Fatalf("channel %d pixel %d: planar=%v interleaved=%v", c, p, dstP[p], dstInter[p*3+c])
			}
		}
	}
}

// TestNaiveFilterAgreesWithFilter cross-checks the fused, redzone
// kernel against the independent reference implementation.
func TestNaiveFilterAgreesWithFilter(t *testing.T) {
	w, h := 11, 11
	total := w * h
	color := make([]float32, total)
	albedo := make([]float32, total)
	normals := make([]float32, total*3)
	for i := 0; i < total; i++ {
		color[i] = 0.1 + 0.3*float32(i%4)
		albedo[i] = 0.5 + 0.1*float32(i%3)
		normals[i*3], normals[i*3+1], normals[i*3+2] = 0, 0, 1
	}
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)
	FilterPlanar(w, h, dst, albedo, z, normals)

	naive := NaiveFilter(w, h, color, albedo, normals)

	lo, hi := ValidRange(w, h)
	for p := lo; p < hi; p++ {
		if !almostEqual(dst[p], naive[p], eps) {
			t.Fatalf("pixel %d: Filter=%v NaiveFilter=%v", p, dst[p], naive[p])
		}
	}
}

// TestS1SinglePixelImage: a 1x1 image has an empty valid range; the
// kernel must write nothing.
func TestS1SinglePixelImage(t *testing.T) {
	w, h := 1, 1
	total := w * h
	color := uniformField(total, 0.3)
	albedo := uniformField(total, 0.3)
	normals := uniformNormals(total, 0, 0, 1)
	z := make([]float32, total)
	Demodulate(z, color, albedo)

	sentinel := float32(42)
	dst := uniformField(total, sentinel)

	FilterPlanar(w, h, dst, albedo, z, normals)

	if dst[0] != sentinel {
		t.Fatalf("dst[0] = %v, want untouched sentinel %v", dst[0], sentinel)
	}
}

// TestS2UniformSevenBySeven: the centre pixel of a uniform 7x7 image
// reproduces its input value exactly.
func TestS2UniformSevenBySeven(t *testing.T) {
	w, h := 7, 7
	total := w * h
	color := uniformField(total, 0.5)
	albedo := uniformField(total, 0.5)
	normals := uniformNormals(total, 0, 0, 1)
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)

	FilterPlanar(w, h, dst, albedo, z, normals)

	lo, hi := ValidRange(w, h)
	if lo != 24 || hi != 25 {
		t.Fatalf("valid range = [%d,%d), want [24,25)", lo, hi)
	}
	if !almostEqual(dst[24], 0.5, 1e-6) {
		t.Fatalf("dst[24] = %v, want 0.5", dst[24])
	}
}

// TestS3IntensitySpike: a single bright centre pixel is pulled toward
// its dimmer neighbours but not all the way.
func TestS3IntensitySpike(t *testing.T) {
	w, h := 7, 7
	total := w * h
	color := uniformField(total, 0.5)
	albedo := uniformField(total, 0.5)
	normals := uniformNormals(total, 0, 0, 1)
	color[24] = 2.0
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)

	FilterPlanar(w, h, dst, albedo, z, normals)

	if dst[24] <= 0.55 || dst[24] >= 0.95 {
		t.Fatalf("dst[24] = %v, want in (0.55, 0.95)", dst[24])
	}
}

// TestS4NormalEdgeGate: the right half-plane carries a normal that
// fails the cos_min gate against the centre's first tap in that
// direction, so dst[24] must be unchanged when "right" is dropped from
// the accumulation entirely.
func TestS4NormalEdgeGate(t *testing.T) {
	w, h := 7, 7
	total := w * h
	color := uniformField(total, 0.5)
	albedo := uniformField(total, 0.5)
	normals := make([]float32, total*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			if x >= 4 {
				normals[p*3], normals[p*3+1], normals[p*3+2] = 1, 0, 0
			} else {
				normals[p*3], normals[p*3+1], normals[p*3+2] = 0, 0, 1
			}
		}
	}
	z := make([]float32, total)
	Demodulate(z, color, albedo)
	dst := make([]float32, total)
	FilterPlanar(w, h, dst, albedo, z, normals)

	ref := filterOriginDirections(w, 24, albedo, z, normals, []direction{dirDown, dirLeft, dirUp})
	if !almostEqual(dst[24], ref, eps) {
		t.Fatalf("dst[24] = %v, want %v (right direction dropped)", dst[24], ref)
	}
}

// filterOriginDirections replicates filterPlanarRange's per-origin
// accumulation restricted to an explicit direction subset, used by
// TestS4NormalEdgeGate to confirm that dropping a gated-out direction
// from the sum changes nothing.
func filterOriginDirections(width, origin int, albedo, z, normals []float32, dirs []direction) float32 {
	zOrigin := z[origin]
	value := zOrigin
	weight := float32(1)

	oi := origin * 3
	nOriginX, nOriginY, nOriginZ := normals[oi], normals[oi+1], normals[oi+2]

	for _, d := range dirs {
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

	return albedo[origin] * value / weight
}
