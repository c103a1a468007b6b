package denoise

import "fmt"

// PlaneImage is the loader's delivery shape: a set of named, planar
// float32 channels sharing one width/height, each with unit x-stride
// and a y-stride equal to width. This is the "black box" the spec's
// §1 calls the image loader's external interface.
type PlaneImage struct {
	Width  int
	Height int
	Planes map[string][]float32
}

// Meta builds an ImageMeta describing this image's channels. Channels
// are listed in map iteration order, which is not defined and is not
// insertion order; for a fixed channel order, use RequiredChannels
// directly against Plane.
func (img *PlaneImage) Meta() ImageMeta {
	meta := ImageMeta{Width: img.Width, Height: img.Height}
	for name := range img.Planes {
		meta.Channels = append(meta.Channels, ChannelDesc{
			Name:            name,
			ElemWidthBytes:  4,
			StrideXBytes:    4,
			StrideYBytes:    4 * img.Width,
		})
	}
	return meta
}

// Plane returns the named channel's plane, or an error if absent or
// mis-sized.
func (img *PlaneImage) Plane(name string) ([]float32, error) {
	p, ok := img.Planes[name]
	if !ok {
		return nil, fmt.Errorf("denoise: missing required channel %q", name)
	}
	if len(p) != img.Width*img.Height {
		return nil, fmt.Errorf("denoise: channel %q has %d elements, want %d", name, len(p), img.Width*img.Height)
	}
	return p, nil
}

// RequireChannels validates that every name in names is present and
// correctly sized, per the spec's "missing required channel" error kind.
func (img *PlaneImage) RequireChannels(names []string) error {
	for _, name := range names {
		if _, err := img.Plane(name); err != nil {
			return err
		}
	}
	return nil
}
