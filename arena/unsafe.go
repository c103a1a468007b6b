package arena

import "unsafe"

// bytesToFloat32 reinterprets a byte slice as a float32 slice without
// copying. The caller guarantees 4-byte alignment and that len(b) is a
// multiple of 4; both hold for every span Allocate hands out.
func bytesToFloat32(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}
