package exr

import (
	"errors"
	"io"

	"github.com/ashgrovefilm/denoiser/internal/xdr"
)

const magicNumber = 0x01312f76

const (
	versionFieldMask  = 0x000000ff
	flagTiled         = 0x00000200
	flagLongNames     = 0x00000400
	flagNonImage      = 0x00000800
	flagMultiPart     = 0x00001000
)

// File-level errors.
var (
	ErrInvalidFile     = errors.New("exr: not a valid OpenEXR file")
	ErrUnsupportedFile = errors.New("exr: unsupported OpenEXR file variant")
)

// File represents an opened OpenEXR file: its parsed header(s) and the
// chunk offset table(s) needed to read pixel data. File does not read
// pixel data itself; use NewScanlineReader for that. Tiled files are
// not supported: OpenReader returns ErrUnsupportedFile for them.
type File struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer

	multiPart bool
	deep      bool
	longNames bool

	headers      []*Header
	chunkOffsets [][]int64
}

// OpenReader parses the OpenEXR header and chunk offset table(s) from r.
// size is the total length of the underlying stream and is required for
// bounds checking since io.ReaderAt has no inherent notion of length.
func OpenReader(r io.ReaderAt, size int64) (*File, error) {
	if size < 8 {
		return nil, ErrInvalidFile
	}

	preamble := make([]byte, size)
	n, err := r.ReadAt(preamble, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	preamble = preamble[:n]

	xr := xdr.NewReader(preamble)

	magic, err := xr.ReadUint32()
	if err != nil {
		return nil, err
	}
	if magic != magicNumber {
		return nil, ErrInvalidFile
	}

	versionWord, err := xr.ReadUint32()
	if err != nil {
		return nil, err
	}

	f := &File{r: r, size: size}
	f.multiPart = versionWord&flagMultiPart != 0
	f.deep = versionWord&flagNonImage != 0
	f.longNames = versionWord&flagLongNames != 0

	for {
		h, err := readHeader(xr, int32(versionWord&versionFieldMask))
		if err != nil {
			return nil, err
		}
		f.headers = append(f.headers, h)
		if !f.multiPart {
			break
		}
		// Multi-part files terminate the part list with an empty header
		// (a bare name-terminator with no preceding attributes). readHeader
		// already consumes one part's attributes; peek for a second
		// terminator marking end-of-part-list.
		peek := xr.Pos()
		name, err := xr.ReadString()
		if err == nil && name == "" {
			break
		}
		xr.SetPos(peek)
	}

	if len(f.headers) == 0 {
		return nil, ErrInvalidFile
	}

	for _, h := range f.headers {
		offsets, err := readChunkOffsetTable(xr, h)
		if err != nil {
			return nil, err
		}
		f.chunkOffsets = append(f.chunkOffsets, offsets)
	}

	return f, nil
}

func readChunkOffsetTable(xr *xdr.Reader, h *Header) ([]int64, error) {
	if h.IsTiled() {
		return nil, ErrUnsupportedFile
	}
	linesPerChunk := h.Compression().ScanlinesPerChunk()
	height := h.Height()
	numChunks := (height + linesPerChunk - 1) / linesPerChunk
	offsets := make([]int64, numChunks)
	for i := 0; i < numChunks; i++ {
		v, err := xr.ReadInt64()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	return offsets, nil
}

// NumParts returns the number of parts in the file. Single-part files
// always report 1.
func (f *File) NumParts() int {
	return len(f.headers)
}

// IsMultiPart reports whether the file stores more than one part.
func (f *File) IsMultiPart() bool {
	return f.multiPart
}

// IsDeep reports whether the file stores deep (variable-sample) pixel data.
func (f *File) IsDeep() bool {
	return f.deep
}

// Header returns the header for the given part index.
func (f *File) Header(part int) *Header {
	if part < 0 || part >= len(f.headers) {
		return nil
	}
	return f.headers[part]
}

// Close releases the underlying file handle, if File owns one.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}
