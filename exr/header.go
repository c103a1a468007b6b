package exr

import (
	"errors"

	"github.com/ashgrovefilm/denoiser/internal/xdr"
)

// ErrInvalidHeader is returned when a header is missing a required
// attribute or an attribute has the wrong type.
var ErrInvalidHeader = errors.New("exr: invalid or incomplete header")

// Header holds the attribute set for one part of an EXR file.
// Everything about a part other than the pixels themselves -
// its channels, its data and display windows, its compression - lives here.
type Header struct {
	attrs   map[string]*Attribute
	order   []string
	version int32
}

// NewHeader creates an empty header with no attributes set.
func NewHeader() *Header {
	return &Header{attrs: make(map[string]*Attribute)}
}

// NewScanlineHeader creates a header for a single-part scanline image
// with the given dimensions, increasing line order and ZIP compression.
// Channels must be added with SetChannels before the header is used.
func NewScanlineHeader(width, height int) *Header {
	h := NewHeader()
	dw := Box2i{Min: V2i{0, 0}, Max: V2i{int32(width) - 1, int32(height) - 1}}
	h.SetDataWindow(dw)
	h.SetDisplayWindow(dw)
	h.SetCompression(CompressionZIP)
	h.SetLineOrder(LineOrderIncreasing)
	h.set("pixelAspectRatio", AttrTypeFloat, float32(1))
	h.set("screenWindowCenter", AttrTypeV2f, V2f{0, 0})
	h.set("screenWindowWidth", AttrTypeFloat, float32(1))
	return h
}

func (h *Header) set(name string, typ AttributeType, value interface{}) {
	if _, ok := h.attrs[name]; !ok {
		h.order = append(h.order, name)
	}
	h.attrs[name] = &Attribute{Name: name, Type: typ, Value: value}
}

// Get returns the raw attribute with the given name, or nil if absent.
func (h *Header) Get(name string) *Attribute {
	return h.attrs[name]
}

// Set installs an attribute directly, preserving first-insertion order.
func (h *Header) Set(attr *Attribute) {
	h.set(attr.Name, attr.Type, attr.Value)
}

// Attributes returns all attributes in the order they were first set.
func (h *Header) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.attrs[name])
	}
	return out
}

// Channels returns the part's channel list, or nil if not yet set.
func (h *Header) Channels() *ChannelList {
	if a := h.attrs["channels"]; a != nil {
		if cl, ok := a.Value.(*ChannelList); ok {
			return cl
		}
	}
	return nil
}

// SetChannels installs the part's channel list.
func (h *Header) SetChannels(cl *ChannelList) {
	h.set("channels", AttrTypeChlist, cl)
}

// DataWindow returns the pixel data window.
func (h *Header) DataWindow() Box2i {
	if a := h.attrs["dataWindow"]; a != nil {
		if b, ok := a.Value.(Box2i); ok {
			return b
		}
	}
	return Box2i{}
}

// SetDataWindow sets the pixel data window.
func (h *Header) SetDataWindow(b Box2i) {
	h.set("dataWindow", AttrTypeBox2i, b)
}

// DisplayWindow returns the display window.
func (h *Header) DisplayWindow() Box2i {
	if a := h.attrs["displayWindow"]; a != nil {
		if b, ok := a.Value.(Box2i); ok {
			return b
		}
	}
	return Box2i{}
}

// SetDisplayWindow sets the display window.
func (h *Header) SetDisplayWindow(b Box2i) {
	h.set("displayWindow", AttrTypeBox2i, b)
}

// Compression returns the part's compression method.
func (h *Header) Compression() Compression {
	if a := h.attrs["compression"]; a != nil {
		if c, ok := a.Value.(Compression); ok {
			return c
		}
	}
	return CompressionNone
}

// SetCompression sets the part's compression method.
func (h *Header) SetCompression(c Compression) {
	h.set("compression", AttrTypeCompression, c)
}

// LineOrder returns the scanline storage order.
func (h *Header) LineOrder() LineOrder {
	if a := h.attrs["lineOrder"]; a != nil {
		if lo, ok := a.Value.(LineOrder); ok {
			return lo
		}
	}
	return LineOrderIncreasing
}

// SetLineOrder sets the scanline storage order.
func (h *Header) SetLineOrder(lo LineOrder) {
	h.set("lineOrder", AttrTypeLineOrder, lo)
}

// Width returns the data window's width in pixels.
func (h *Header) Width() int {
	return int(h.DataWindow().Width())
}

// Height returns the data window's height in pixels.
func (h *Header) Height() int {
	return int(h.DataWindow().Height())
}

// IsTiled reports whether the part stores tiled (rather than scanline) data.
func (h *Header) IsTiled() bool {
	_, ok := h.attrs["tiles"]
	return ok
}

// TileDescription returns the part's tile description.
// Only meaningful when IsTiled reports true.
func (h *Header) TileDescription() TileDescription {
	if a := h.attrs["tiles"]; a != nil {
		if td, ok := a.Value.(TileDescription); ok {
			return td
		}
	}
	return TileDescription{}
}

// SetTileDescription marks the part as tiled with the given description.
func (h *Header) SetTileDescription(td TileDescription) {
	h.set("tiles", AttrTypeTileDesc, td)
}

// Name returns the part name, used by multi-part files. Single-part
// files have no "name" attribute and Name returns "".
func (h *Header) Name() string {
	if a := h.attrs["name"]; a != nil {
		if s, ok := a.Value.(string); ok {
			return s
		}
	}
	return ""
}

// readHeader reads attributes from r until the empty-name terminator.
func readHeader(r *xdr.Reader, version int32) (*Header, error) {
	h := NewHeader()
	h.version = version
	for {
		attr, err := ReadAttribute(r)
		if err != nil {
			return nil, err
		}
		if attr == nil {
			break
		}
		h.set(attr.Name, attr.Type, attr.Value)
	}
	if h.Channels() == nil {
		return nil, ErrInvalidHeader
	}
	if _, ok := h.attrs["dataWindow"]; !ok {
		return nil, ErrInvalidHeader
	}
	return h, nil
}

// writeHeader writes the header's attributes followed by the terminator.
func writeHeader(w *xdr.BufferWriter, h *Header) error {
	for _, name := range h.order {
		if err := WriteAttribute(w, h.attrs[name]); err != nil {
			return err
		}
	}
	w.WriteString("")
	return nil
}
