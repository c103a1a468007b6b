package denoise

import "fmt"

// ChannelDesc locates one named float32 plane within a larger storage
// region. Offsets and strides are expressed in bytes so the same
// descriptor shape can describe both a file-format channel and a
// hand-packed arena buffer.
type ChannelDesc struct {
	Name            string
	ElemWidthBytes  int
	BaseOffsetBytes int
	StrideXBytes    int
	StrideYBytes    int
}

// BaseOffsetElems returns BaseOffsetBytes in units of elements.
func (c ChannelDesc) BaseOffsetElems() int {
	return c.BaseOffsetBytes / c.ElemWidthBytes
}

// StrideXElems returns StrideXBytes in units of elements.
func (c ChannelDesc) StrideXElems() int {
	return c.StrideXBytes / c.ElemWidthBytes
}

// StrideYElems returns StrideYBytes in units of elements.
func (c ChannelDesc) StrideYElems() int {
	return c.StrideYBytes / c.ElemWidthBytes
}

// OffsetElems returns the element offset of pixel (x, y).
func (c ChannelDesc) OffsetElems(x, y int) int {
	return c.BaseOffsetElems() + x*c.StrideXElems() + y*c.StrideYElems()
}

// IsUnitPlanar reports whether the channel has unit x-stride and a
// y-stride equal to width — the only layout the kernel accepts.
func (c ChannelDesc) IsUnitPlanar(width int) bool {
	return c.StrideXElems() == 1 && c.StrideYElems() == width
}

// ImageMeta describes an image's dimensions and its ordered channel
// list, the way the original render-pass buffer would be described
// before any pixel data is touched.
type ImageMeta struct {
	Width    int
	Height   int
	Channels []ChannelDesc
}

// TotalPixels returns Width * Height.
func (m ImageMeta) TotalPixels() int {
	return m.Width * m.Height
}

// StorageSize returns the number of elements needed to store every
// channel back to back, planar.
func (m ImageMeta) StorageSize() int {
	return m.TotalPixels() * len(m.Channels)
}

// FindChannel returns the index of the channel with the given name, or
// an error if it isn't present. Lookup is linear; channel counts are
// always small (single digits) so this is not worth indexing.
func (m ImageMeta) FindChannel(name string) (int, error) {
	for i, ch := range m.Channels {
		if ch.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("denoise: channel %q not found", name)
}

// Channel returns the channel descriptor with the given name.
func (m ImageMeta) Channel(name string) (ChannelDesc, error) {
	i, err := m.FindChannel(name)
	if err != nil {
		return ChannelDesc{}, err
	}
	return m.Channels[i], nil
}

// RequiredChannels is the fixed set of named planes the kernel consults,
// per spec section 4.2.
var RequiredChannels = []string{
	"R", "G", "B",
	"Albedo.R", "Albedo.G", "Albedo.B",
	"Ns.X", "Ns.Y", "Ns.Z",
}
