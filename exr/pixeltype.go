package exr

// PixelType identifies the on-disk element type of a channel.
type PixelType uint32

const (
	// PixelTypeUint stores pixel data as unsigned 32-bit integers.
	PixelTypeUint PixelType = 0
	// PixelTypeHalf stores pixel data as IEEE 754 half-precision floats.
	PixelTypeHalf PixelType = 1
	// PixelTypeFloat stores pixel data as IEEE 754 single-precision floats.
	PixelTypeFloat PixelType = 2
)

// String returns the name OpenEXR uses for the pixel type in diagnostics.
func (t PixelType) String() string {
	switch t {
	case PixelTypeUint:
		return "uint"
	case PixelTypeHalf:
		return "half"
	case PixelTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Size returns the size in bytes of one element of the pixel type.
func (t PixelType) Size() int {
	switch t {
	case PixelTypeUint:
		return 4
	case PixelTypeHalf:
		return 2
	case PixelTypeFloat:
		return 4
	default:
		return 0
	}
}
