package denoise

import (
	"testing"

	"github.com/ashgrovefilm/denoiser/arena"
)

func newTestImage(w, h int) *PlaneImage {
	total := w * h
	planes := make(map[string][]float32)
	for _, name := range []string{"R", "G", "B"} {
		p := make([]float32, total)
		for i := range p {
			p[i] = float32(i)
		}
		planes[name] = p
	}
	return &PlaneImage{Width: w, Height: h, Planes: planes}
}

func TestUploadChannel(t *testing.T) {
	a, err := arena.New(arena.DefaultSize)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	defer a.Close()

	img := newTestImage(4, 4)
	span := UploadChannel(a, 0, img, "R")
	if len(span) != 16 {
		t.Fatalf("len(span) = %d, want 16", len(span))
	}
	for i, v := range span {
		if v != float32(i) {
			t.Fatalf("span[%d] = %v, want %v", i, v, i)
		}
	}
}

func TestUploadChannelsInterleaveAndDeinterleave(t *testing.T) {
	a, err := arena.New(arena.DefaultSize)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	defer a.Close()

	img := newTestImage(3, 3)
	interleaved := UploadChannelsInterleave(a, 0, img, []string{"R", "G", "B"})
	if len(interleaved) != 27 {
		t.Fatalf("len(interleaved) = %d, want 27", len(interleaved))
	}
	for i := 0; i < 9; i++ {
		want := float32(i)
		if interleaved[i*3] != want || interleaved[i*3+1] != want || interleaved[i*3+2] != want {
			t.Fatalf("pixel %d: got (%v,%v,%v), want (%v,%v,%v)", i,
				interleaved[i*3], interleaved[i*3+1], interleaved[i*3+2], want, want, want)
		}
	}

	r := make([]float32, 9)
	g := make([]float32, 9)
	b := make([]float32, 9)
	if err := Deinterleave3(interleaved, r, g, b); err != nil {
		t.Fatalf("Deinterleave3: %v", err)
	}
	for i := 0; i < 9; i++ {
		if r[i] != float32(i) || g[i] != float32(i) || b[i] != float32(i) {
			t.Fatalf("pixel %d: r=%v g=%v b=%v, want %v", i, r[i], g[i], b[i], i)
		}
	}
}

func TestDeinterleave3SizeMismatch(t *testing.T) {
	interleaved := make([]float32, 9)
	r := make([]float32, 3)
	g := make([]float32, 3)
	b := make([]float32, 2)
	if err := Deinterleave3(interleaved, r, g, b); err == nil {
		t.Fatalf("Deinterleave3: want size-mismatch error, got nil")
	}
}

func TestUploadChannelMissingPanics(t *testing.T) {
	a, err := arena.New(arena.DefaultSize)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	defer a.Close()

	img := newTestImage(2, 2)
	defer func() {
		if recover() == nil {
			t.Fatalf("UploadChannel(missing): want panic, got none")
		}
	}()
	UploadChannel(a, 0, img, "Nope")
}
