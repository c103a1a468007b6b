// Package tonemap writes a planar or RGB-interleaved float32 buffer
// out as an 8-bit PNG, per spec.md §6: pixel mapping is
// clamp(f, 0, 1) * 255, truncating cast, no colour-space conversion.
//
// Grounded on the only PNG-writing code anywhere in the retrieved
// pack, lukaszgryglicki-photons4d's pngs.go (image.NewRGBA +
// image/png.Encoder{CompressionLevel: png.BestCompression}); no
// third-party PNG encoder appears in any example repo.
package tonemap

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

func clampByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f * 255)
}

// SavePlanar writes three independent colour planes (r, g, b), each
// width*height float32, as an 8-bit RGB PNG at path.
func SavePlanar(path string, width, height int, r, g, b []float32) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			p := row + x
			off := img.PixOffset(x, y)
			img.Pix[off+0] = clampByte(r[p])
			img.Pix[off+1] = clampByte(g[p])
			img.Pix[off+2] = clampByte(b[p])
			img.Pix[off+3] = 255
		}
	}
	return encode(path, img)
}

// SaveInterleaved writes an "RGB RGB ..." interleaved float32 buffer
// of length 3*width*height as an 8-bit RGB PNG at path.
func SaveInterleaved(path string, width, height int, rgb []float32) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			p := (row + x) * 3
			off := img.PixOffset(x, y)
			img.Pix[off+0] = clampByte(rgb[p])
			img.Pix[off+1] = clampByte(rgb[p+1])
			img.Pix[off+2] = clampByte(rgb[p+2])
			img.Pix[off+3] = 255
		}
	}
	return encode(path, img)
}

func encode(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tonemap: create %s: %w", path, err)
	}
	defer f.Close()

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		return fmt.Errorf("tonemap: encode %s: %w", path, err)
	}
	return nil
}
