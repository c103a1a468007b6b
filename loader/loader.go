// Package loader reads the denoiser's multi-channel OpenEXR input into
// the planar shape denoise.PlaneImage expects. It is the concrete
// implementation behind the "image loader" black box spec.md §1
// treats as an external collaborator.
package loader

import (
	"fmt"

	"github.com/ashgrovefilm/denoiser/denoise"
	"github.com/ashgrovefilm/denoiser/exr"
)

// Load opens the OpenEXR file at path, decodes its scanlines, and
// returns a denoise.PlaneImage carrying every channel in
// denoise.RequiredChannels as a float32 plane.
//
// Scope is deliberately narrower than a general-purpose EXR reader:
// single-part, non-tiled, non-deep, None/RLE/ZIPS/ZIP compression
// only, since those are the only files the denoiser's domain produces
// or consumes (see DESIGN.md).
func Load(path string) (*denoise.PlaneImage, error) {
	f, err := exr.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	h := f.Header(0)
	if h == nil {
		return nil, fmt.Errorf("loader: %s: no header", path)
	}
	if h.IsTiled() {
		return nil, fmt.Errorf("loader: %s: tiled EXR not supported", path)
	}

	dw := h.DataWindow()
	width := int(dw.Width())
	height := int(dw.Height())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("loader: %s: empty data window", path)
	}

	cl := h.Channels()
	for _, name := range denoise.RequiredChannels {
		ch, ok := cl.Get(name)
		if !ok {
			return nil, fmt.Errorf("loader: %s: missing required channel %q", path, name)
		}
		if ch.Type != exr.PixelTypeFloat {
			return nil, fmt.Errorf("loader: %s: channel %q has type %s, want float", path, name, ch.Type)
		}
		if ch.XSampling != 1 || ch.YSampling != 1 {
			return nil, fmt.Errorf("loader: %s: channel %q is subsampled, not supported", path, name)
		}
	}

	sr, err := exr.NewScanlineReader(f)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}

	planes := make(map[string][]float32, len(denoise.RequiredChannels))
	fb := exr.NewFrameBuffer()
	for _, name := range denoise.RequiredChannels {
		plane := make([]float32, width*height)
		planes[name] = plane
		fb.Set(name, exr.NewSliceFromFloat32(plane, width, height))
	}
	sr.SetFrameBuffer(fb)

	if err := sr.ReadPixels(0, height-1); err != nil {
		return nil, fmt.Errorf("loader: %s: read pixels: %w", path, err)
	}

	out := &denoise.PlaneImage{Width: width, Height: height, Planes: planes}
	if err := out.RequireChannels(denoise.RequiredChannels); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return out, nil
}
