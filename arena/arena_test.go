//go:build !windows

package arena

import "testing"

func TestAllocateBasic(t *testing.T) {
	a, err := New(pageSize * 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	span := a.Allocate(0, 100)
	if len(span) != 100 {
		t.Fatalf("len(span) = %d, want 100", len(span))
	}
	span[0] = 1.5
	span[99] = 2.5
	if span[0] != 1.5 || span[99] != 2.5 {
		t.Fatalf("span not writable/readable")
	}
}

func TestAllocateAdvancesByWholePages(t *testing.T) {
	a, err := New(pageSize * 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	a.Allocate(0, 1)
	if a.top != pageSize {
		t.Fatalf("top = %d, want %d", a.top, pageSize)
	}
	a.Allocate(0, 1)
	if a.top != 2*pageSize {
		t.Fatalf("top = %d, want %d", a.top, 2*pageSize)
	}
}

func TestAllocateDistinctOffsetsDoNotOverlap(t *testing.T) {
	a, err := New(pageSize * 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	s1 := a.Allocate(0, 10)
	s2 := a.Allocate(128, 10)

	s1[0] = 7
	s2[0] = 9
	if s1[0] != 7 || s2[0] != 9 {
		t.Fatalf("colour-offset allocations alias: s1[0]=%v s2[0]=%v", s1[0], s2[0])
	}
}

func TestAllocateOverflowPanics(t *testing.T) {
	a, err := New(pageSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on capacity exhaustion")
		}
	}()
	a.Allocate(0, pageSize) // far more floats than fit in one page
}

func TestPrefaultDoesNotCorruptData(t *testing.T) {
	a, err := New(pageSize * 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	span := a.Allocate(0, 10)
	for i := range span {
		span[i] = float32(i)
	}
	a.Prefault()
	for i := range span {
		if span[i] != float32(i) {
			t.Fatalf("Prefault corrupted data at %d: got %v", i, span[i])
		}
	}
}
