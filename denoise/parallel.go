package denoise

import "github.com/ashgrovefilm/denoiser/exr"

// parallelRanges splits [lo, hi) into up to tiles contiguous bands and
// runs fn over each on the teacher's own worker pool. It is the
// kernel's tile-partitioned execution path, used by the parallel
// variants and exercised by the parallel-equivalence test.
func parallelRanges(lo, hi, tiles int, fn func(a, b int) error) error {
	if hi <= lo {
		return nil
	}
	if tiles <= 1 {
		return fn(lo, hi)
	}

	span := hi - lo
	chunk := (span + tiles - 1) / tiles
	if chunk == 0 {
		chunk = span
	}

	return exr.ParallelForWithError(tiles, func(t int) error {
		a := lo + t*chunk
		if a >= hi {
			return nil
		}
		b := a + chunk
		if b > hi {
			b = hi
		}
		return fn(a, b)
	})
}
