package exr

import (
	"errors"
	"io"

	"github.com/ashgrovefilm/denoiser/compression"
	"github.com/ashgrovefilm/denoiser/internal/predictor"
	"github.com/ashgrovefilm/denoiser/internal/xdr"
)

// ErrUnsupportedCompression is returned for compression methods this
// reader does not implement (PIZ, PXR24, B44/B44A, DWAA/DWAB, HTJ2K).
// Those codecs either need data precision the denoiser never produces
// (half-float block transforms) or an entropy stage that wasn't available
// to build against; scanline images compressed with them are rejected
// rather than silently mis-decoded.
var ErrUnsupportedCompression = errors.New("exr: unsupported compression method")

// ScanlineReader reads pixel data from a single-part scanline EXR file
// into a caller-supplied FrameBuffer.
type ScanlineReader struct {
	file   *File
	part   int
	header *Header
	pool   *BufferPool
	fb     *FrameBuffer
}

// NewScanlineReader creates a reader for part 0 of f.
func NewScanlineReader(f *File) (*ScanlineReader, error) {
	return NewScanlineReaderPart(f, 0)
}

// NewScanlineReaderPart creates a reader for the given part of f.
func NewScanlineReaderPart(f *File, part int) (*ScanlineReader, error) {
	h := f.Header(part)
	if h == nil {
		return nil, ErrInvalidHeader
	}
	if h.IsTiled() {
		return nil, ErrUnsupportedFile
	}
	switch h.Compression() {
	case CompressionNone, CompressionRLE, CompressionZIPS, CompressionZIP:
	default:
		return nil, ErrUnsupportedCompression
	}
	return &ScanlineReader{file: f, part: part, header: h, pool: NewBufferPool()}, nil
}

// SetFrameBuffer installs the destination slices for subsequent reads.
func (sr *ScanlineReader) SetFrameBuffer(fb *FrameBuffer) {
	sr.fb = fb
}

// ReadPixels decodes every chunk whose scanline range intersects
// [yMin, yMax] (inclusive) and scatters the pixels into the frame buffer.
func (sr *ScanlineReader) ReadPixels(yMin, yMax int) error {
	if sr.fb == nil {
		return errors.New("exr: ReadPixels called before SetFrameBuffer")
	}

	dw := sr.header.DataWindow()
	linesPerChunk := sr.header.Compression().ScanlinesPerChunk()
	offsets := sr.file.chunkOffsets[sr.part]
	channels := sr.header.Channels()

	for chunkIdx, off := range offsets {
		chunkY := int(dw.Min.Y) + chunkIdx*linesPerChunk
		chunkYEnd := chunkY + linesPerChunk - 1
		if chunkYEnd < yMin || chunkY > yMax {
			continue
		}

		linesInChunk := linesPerChunk
		if chunkYEnd > int(dw.Max.Y) {
			linesInChunk = int(dw.Max.Y) - chunkY + 1
		}

		raw, err := sr.readChunk(off, linesInChunk, channels, int(dw.Width()))
		if err != nil {
			return err
		}

		if err := sr.scatterChunk(raw, chunkY, linesInChunk, channels, dw, yMin, yMax); err != nil {
			return err
		}
	}
	return nil
}

// readChunk reads and decompresses one scanline chunk, returning the
// raw (uncompressed) per-scanline, per-channel pixel bytes.
func (sr *ScanlineReader) readChunk(off int64, linesInChunk int, channels *ChannelList, width int) ([]byte, error) {
	head := make([]byte, 8)
	if _, err := readAt(sr.file.r, head, off); err != nil {
		return nil, err
	}
	hr := xdr.NewReader(head)
	if _, err := hr.ReadInt32(); err != nil { // chunk y, unused here; offsets already tell us
		return nil, err
	}
	packedSize, err := hr.ReadInt32()
	if err != nil {
		return nil, err
	}

	packed := sr.pool.Get(int(packedSize))
	defer sr.pool.Put(packed)
	packed = packed[:packedSize]
	if _, err := readAt(sr.file.r, packed, off+8); err != nil {
		return nil, err
	}

	rawSize := bytesPerLine(channels, width) * linesInChunk

	switch sr.header.Compression() {
	case CompressionNone:
		if len(packed) != rawSize {
			return nil, ErrInvalidFile
		}
		raw := make([]byte, rawSize)
		copy(raw, packed)
		return raw, nil
	case CompressionRLE:
		return compression.RLEDecompress(packed, rawSize)
	case CompressionZIPS, CompressionZIP:
		inflated, err := compression.ZIPDecompress(packed, rawSize)
		if err != nil {
			return nil, err
		}
		deinterleaved := compression.Deinterleave(inflated)
		predictor.Decode(deinterleaved)
		return deinterleaved, nil
	default:
		return nil, ErrUnsupportedCompression
	}
}

// scatterChunk copies decoded scanline bytes for rows in [yMin, yMax]
// into the matching slices of the frame buffer.
func (sr *ScanlineReader) scatterChunk(raw []byte, chunkY, linesInChunk int, channels *ChannelList, dw Box2i, yMin, yMax int) error {
	width := int(dw.Width())
	pos := 0
	for line := 0; line < linesInChunk; line++ {
		y := chunkY + line
		inRange := y >= yMin && y <= yMax
		for i := 0; i < channels.Len(); i++ {
			ch := channels.At(i)
			rowWidth := width / int(ch.XSampling)
			rowBytes := rowWidth * ch.Type.Size()
			if inRange {
				if slice := sr.fb.Get(ch.Name); slice != nil {
					switch ch.Type {
					case PixelTypeFloat:
						slice.WriteRowFloat(y-int(dw.Min.Y), raw[pos:pos+rowBytes], 0, rowWidth)
					case PixelTypeUint:
						slice.WriteRowUint(y-int(dw.Min.Y), raw[pos:pos+rowBytes], 0, rowWidth)
					}
				}
			}
			pos += rowBytes
		}
	}
	return nil
}

func bytesPerLine(channels *ChannelList, width int) int {
	total := 0
	for i := 0; i < channels.Len(); i++ {
		ch := channels.At(i)
		total += (width / int(ch.XSampling)) * ch.Type.Size()
	}
	return total
}

func readAt(r io.ReaderAt, buf []byte, off int64) (int, error) {
	n, err := r.ReadAt(buf, off)
	if err == io.EOF && n == len(buf) {
		err = nil
	}
	return n, err
}

