package denoise

import "testing"

func TestFindChannel(t *testing.T) {
	meta := ImageMeta{
		Width:  4,
		Height: 4,
		Channels: []ChannelDesc{
			{Name: "R", ElemWidthBytes: 4, StrideXBytes: 4, StrideYBytes: 16},
			{Name: "G", ElemWidthBytes: 4, StrideXBytes: 4, StrideYBytes: 16},
		},
	}

	if _, err := meta.FindChannel("B"); err == nil {
		t.Fatalf("FindChannel(%q): want error, got nil", "B")
	}

	idx, err := meta.FindChannel("G")
	if err != nil {
		t.Fatalf("FindChannel(G): %v", err)
	}
	if idx != 1 {
		t.Fatalf("FindChannel(G) = %d, want 1", idx)
	}
}

func TestChannelDescIsUnitPlanar(t *testing.T) {
	ch := ChannelDesc{Name: "R", ElemWidthBytes: 4, StrideXBytes: 4, StrideYBytes: 32}
	if !ch.IsUnitPlanar(8) {
		t.Fatalf("IsUnitPlanar(8) = false, want true for stride-y 32 / width 8")
	}
	if ch.IsUnitPlanar(7) {
		t.Fatalf("IsUnitPlanar(7) = true, want false")
	}
}

func TestImageMetaTotalsAndOffsets(t *testing.T) {
	meta := ImageMeta{
		Width:  5,
		Height: 3,
		Channels: []ChannelDesc{
			{Name: "R", ElemWidthBytes: 4, StrideXBytes: 4, StrideYBytes: 20},
			{Name: "G", ElemWidthBytes: 4, StrideXBytes: 4, StrideYBytes: 20},
		},
	}
	if meta.TotalPixels() != 15 {
		t.Fatalf("TotalPixels() = %d, want 15", meta.TotalPixels())
	}
	if meta.StorageSize() != 30 {
		t.Fatalf("StorageSize() = %d, want 30", meta.StorageSize())
	}

	ch, err := meta.Channel("R")
	if err != nil {
		t.Fatalf("Channel(R): %v", err)
	}
	if off := ch.OffsetElems(2, 1); off != 7 {
		t.Fatalf("OffsetElems(2,1) = %d, want 7", off)
	}
}
