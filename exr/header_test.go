package exr

import (
	"testing"

	"github.com/ashgrovefilm/denoiser/internal/xdr"
)

func TestNewScanlineHeaderDefaults(t *testing.T) {
	h := NewScanlineHeader(64, 32)
	if h.Width() != 64 || h.Height() != 32 {
		t.Fatalf("Width/Height = %d/%d, want 64/32", h.Width(), h.Height())
	}
	if h.Compression() != CompressionZIP {
		t.Fatalf("Compression() = %v, want %v", h.Compression(), CompressionZIP)
	}
	if h.IsTiled() {
		t.Fatalf("IsTiled() = true, want false")
	}
	if h.Channels() != nil {
		t.Fatalf("Channels() = %v, want nil before SetChannels", h.Channels())
	}
}

func TestHeaderSetChannelsAndDataWindow(t *testing.T) {
	h := NewHeader()
	cl := NewChannelList()
	cl.Add(Channel{Name: "R", Type: PixelTypeFloat, XSampling: 1, YSampling: 1})
	h.SetChannels(cl)

	dw := Box2i{Min: V2i{0, 0}, Max: V2i{9, 4}}
	h.SetDataWindow(dw)

	if got := h.Channels(); got == nil || got.Len() != 1 {
		t.Fatalf("Channels() = %v, want 1-channel list", got)
	}
	if h.DataWindow() != dw {
		t.Fatalf("DataWindow() = %v, want %v", h.DataWindow(), dw)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := NewScanlineHeader(8, 8)
	cl := NewChannelList()
	cl.Add(Channel{Name: "R", Type: PixelTypeFloat, XSampling: 1, YSampling: 1})
	cl.Add(Channel{Name: "G", Type: PixelTypeFloat, XSampling: 1, YSampling: 1})
	h.SetChannels(cl)

	w := xdr.NewBufferWriter(512)
	if err := writeHeader(w, h); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}

	got, err := readHeader(xdr.NewReader(w.Bytes()), 2)
	if err != nil {
		t.Fatalf("readHeader: %v", err)
	}
	if got.Width() != 8 || got.Height() != 8 {
		t.Fatalf("Width/Height = %d/%d, want 8/8", got.Width(), got.Height())
	}
	if got.Channels() == nil || got.Channels().Len() != 2 {
		t.Fatalf("Channels() round trip lost entries: %v", got.Channels())
	}
}

func TestReadHeaderMissingChannelsIsInvalid(t *testing.T) {
	h := NewHeader()
	h.SetDataWindow(Box2i{Min: V2i{0, 0}, Max: V2i{1, 1}})

	w := xdr.NewBufferWriter(128)
	if err := writeHeader(w, h); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}

	if _, err := readHeader(xdr.NewReader(w.Bytes()), 2); err != ErrInvalidHeader {
		t.Fatalf("readHeader: got %v, want ErrInvalidHeader", err)
	}
}
