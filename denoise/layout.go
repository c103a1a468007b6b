package denoise

import (
	"fmt"

	"github.com/ashgrovefilm/denoiser/arena"
)

// UploadChannel copies one plane contiguously into a fresh arena
// allocation at the given cache-colouring offset.
//
// The source plane must have unit x-stride and a y-stride equal to the
// image width — the only layout the kernel ever reads. Violating this
// is a precondition error per spec §7 and panics rather than returning
// an error, since it can only be caused by a caller bug.
func UploadChannel(a *arena.Arena, offsetBytes int, img *PlaneImage, name string) []float32 {
	plane, err := img.Plane(name)
	if err != nil {
		panic(err)
	}
	requireUnitPlanar(img, name)
	total := img.Width * img.Height
	dst := a.Allocate(offsetBytes, total)
	copy(dst, plane)
	return dst
}

// requireUnitPlanar consults the channel directory built from img and
// panics if the named channel isn't laid out the way the kernel
// requires: unit x-stride, y-stride equal to the image width. This is
// spec §4.3's enforced precondition, checked against the directory
// rather than the storage PlaneImage already guarantees by
// construction, so a future loader that hands the shaper a strided
// descriptor is still caught.
func requireUnitPlanar(img *PlaneImage, name string) {
	ch, err := img.Meta().Channel(name)
	if err != nil {
		panic(err)
	}
	if !ch.IsUnitPlanar(img.Width) {
		panic(fmt.Sprintf("denoise: channel %q is not unit-planar: xstride=%d ystride=%d width=%d", name, ch.StrideXElems(), ch.StrideYElems(), img.Width))
	}
}

// UploadChannelsInterleave writes pixels of len(names) planes
// interleaved: for pixel index i, the values of names[0], names[1], ...
// are written back to back before advancing to i+1. Used for normals
// (always) and, when the kernel is configured for the interleaved
// layout variant, colour and albedo too.
func UploadChannelsInterleave(a *arena.Arena, offsetBytes int, img *PlaneImage, names []string) []float32 {
	planes := make([][]float32, len(names))
	for i, name := range names {
		p, err := img.Plane(name)
		if err != nil {
			panic(err)
		}
		requireUnitPlanar(img, name)
		planes[i] = p
	}

	total := img.Width * img.Height
	dst := a.Allocate(offsetBytes, total*len(names))
	for i := 0; i < total; i++ {
		base := i * len(names)
		for c, p := range planes {
			dst[base+c] = p[i]
		}
	}
	return dst
}

// Deinterleave3 splits an interleaved RGB-triple buffer (as produced by
// the kernel's interleaved variant) back into three planar buffers.
// g and b must have the same length as r, and interleaved must have
// length 3*len(r); otherwise Deinterleave3 returns an error.
func Deinterleave3(interleaved []float32, r, g, b []float32) error {
	n := len(r)
	if len(g) != n || len(b) != n || len(interleaved) != 3*n {
		return fmt.Errorf("denoise: Deinterleave3 size mismatch: interleaved=%d planar=%d", len(interleaved), n)
	}
	for i := 0; i < n; i++ {
		r[i] = interleaved[3*i+0]
		g[i] = interleaved[3*i+1]
		b[i] = interleaved[3*i+2]
	}
	return nil
}
