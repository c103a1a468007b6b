package exr

import (
	"errors"
	"io"
	"os"
)

// Open opens an EXR file from a reader.
// The size parameter is required for random access.
func Open(r io.ReaderAt, size ...int64) (*File, error) {
	if len(size) > 0 {
		return OpenReader(r, size[0])
	}
	// Try to determine size from Seeker
	if seeker, ok := r.(io.Seeker); ok {
		current, err := seeker.Seek(0, io.SeekCurrent)
		if err == nil {
			end, err := seeker.Seek(0, io.SeekEnd)
			if err == nil {
				seeker.Seek(current, io.SeekStart)
				return OpenReader(r, end)
			}
		}
	}
	return nil, errors.New("exr: cannot determine file size, use OpenReader instead")
}

// OpenFile opens an EXR file from the filesystem.
// The returned File must be closed to release the file handle.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	file, err := OpenReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	file.closer = f
	return file, nil
}
