//go:build !windows

// Package arena provides a bump allocator over a single large
// private-anonymous memory mapping.
//
// Allocations never free individually; the whole region is released
// when the arena is closed. The offsetBytes argument to Allocate is a
// cache-colouring knob, not a correctness concern: giving two
// concurrently hot buffers different offsets nudges their addresses
// into different L1 cache sets.
//
// POSIX-only, like the original mempool.cpp; the teacher's
// syscall.CreateFileMapping-based exr/mmap_windows.go (not kept in
// this tree) is the pack's template for a Windows arena and would take
// the same shape, but the renderer this
// module denoises output from is POSIX-only in every retrieved
// example.
package arena

import (
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"
)

const pageSize = 4096

// DefaultSize is the size of the mapping created by New, matching the
// production arena's 500 MiB region.
const DefaultSize = 500 * 1024 * 1024

// Arena is a single-producer bump allocator backed by an anonymous
// mmap region. It is not safe for concurrent Allocate calls.
type Arena struct {
	mem  []byte
	top  int
	used int64
}

// New creates an arena backed by a fresh private-anonymous mapping of
// size bytes, rounded up to a whole number of pages.
func New(size int) (*Arena, error) {
	if size <= 0 {
		size = DefaultSize
	}
	pages := (size + pageSize - 1) / pageSize
	size = pages * pageSize

	mem, err := syscall.Mmap(-1, 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE|syscall.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	return &Arena{mem: mem}, nil
}

// Close unmaps the arena's backing region. The arena and every span
// returned by Allocate must not be used afterward.
func (a *Arena) Close() error {
	if a.mem == nil {
		return nil
	}
	err := syscall.Munmap(a.mem)
	a.mem = nil
	return err
}

// Size returns the total size of the mapping in bytes.
func (a *Arena) Size() int {
	return len(a.mem)
}

// Used returns the number of bytes bump-allocated so far.
func (a *Arena) Used() int64 {
	return a.used
}

// Allocate reserves sizeElems float32 elements offsetBytes into a
// freshly bumped, page-aligned block, and returns the resulting span.
// offsetBytes must be a multiple of 4 (float32 width); it shifts where
// within the newly bumped pages the returned span begins, which is
// the whole point: distinct buffers can share the same page-aligned
// cursor advance pattern while landing at different cache-set offsets.
//
// Allocate panics if the bump cursor would exceed the mapping — per
// the spec this is a fatal capacity-exhaustion condition, not a
// recoverable error.
func (a *Arena) Allocate(offsetBytes, sizeElems int) []float32 {
	const elemSize = 4
	if offsetBytes%elemSize != 0 {
		panic(fmt.Sprintf("arena: offsetBytes %d is not a multiple of %d", offsetBytes, elemSize))
	}
	if sizeElems < 0 || offsetBytes < 0 {
		panic("arena: negative allocation size or offset")
	}

	sizeBytes := sizeElems*elemSize + offsetBytes
	pages := (sizeBytes + pageSize - 1) / pageSize
	sizeBytes = pages * pageSize

	if offsetBytes > sizeBytes {
		panic("arena: offsetBytes exceeds rounded allocation size")
	}
	if a.top+sizeBytes > len(a.mem) {
		panic(fmt.Sprintf("arena: capacity exhausted: top=%d want=%d cap=%d", a.top, sizeBytes, len(a.mem)))
	}

	start := a.top + offsetBytes
	a.top += sizeBytes
	a.used += int64(sizeBytes)

	raw := a.mem[start : start+sizeElems*elemSize]
	return bytesToFloat32(raw)
}

// Prefault walks the mapping one page at a time, writing to the first
// word of each without changing its value, to materialise physical pages before timed work begins. This
// eliminates minor page faults from polluting kernel timing.
func (a *Arena) Prefault() {
	for i := 0; i < len(a.mem); i += pageSize {
		// An atomic add of zero is a real store the compiler cannot
		// drop, and it leaves the byte's contents unchanged.
		atomic.AddUint32((*uint32)(unsafe.Pointer(&a.mem[i])), 0)
	}
}
