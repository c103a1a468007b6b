package exr

import (
	"errors"

	"github.com/ashgrovefilm/denoiser/internal/xdr"
)

// ErrDuplicateChannel is returned when a channel list already has a
// channel of the given name.
var ErrDuplicateChannel = errors.New("exr: duplicate channel name")

// Channel describes one named channel in a file's ChannelList attribute.
type Channel struct {
	Name string

	// Type is the on-disk element type (uint, half or float).
	Type PixelType

	// PLinear marks the channel as perceptually linear, used by lossy
	// compressors such as B44 to decide which channels to subsample.
	PLinear bool

	// XSampling and YSampling are the channel's subsampling factors.
	// Almost all channels use 1, 1.
	XSampling int32
	YSampling int32
}

// ChannelList is the ordered set of channels stored in an EXR part.
// OpenEXR always keeps channels sorted by name; Add maintains that order.
type ChannelList struct {
	channels []Channel
}

// NewChannelList creates an empty channel list.
func NewChannelList() *ChannelList {
	return &ChannelList{}
}

// Add inserts a channel, keeping the list sorted by name.
func (cl *ChannelList) Add(ch Channel) error {
	for _, existing := range cl.channels {
		if existing.Name == ch.Name {
			return ErrDuplicateChannel
		}
	}
	i := 0
	for i < len(cl.channels) && cl.channels[i].Name < ch.Name {
		i++
	}
	cl.channels = append(cl.channels, Channel{})
	copy(cl.channels[i+1:], cl.channels[i:])
	cl.channels[i] = ch
	return nil
}

// Len returns the number of channels.
func (cl *ChannelList) Len() int {
	return len(cl.channels)
}

// At returns the channel at the given index, in sorted-name order.
func (cl *ChannelList) At(i int) Channel {
	return cl.channels[i]
}

// Get returns the channel with the given name, and whether it was found.
func (cl *ChannelList) Get(name string) (Channel, bool) {
	for _, ch := range cl.channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// Has reports whether a channel with the given name exists.
func (cl *ChannelList) Has(name string) bool {
	_, ok := cl.Get(name)
	return ok
}

// Names returns the channel names in sorted order.
func (cl *ChannelList) Names() []string {
	names := make([]string, len(cl.channels))
	for i, ch := range cl.channels {
		names[i] = ch.Name
	}
	return names
}

// ReadChannelList reads a chlist attribute body. The format is a sequence
// of null-terminated entries (name, pixel type, pLinear+reserved, xSampling,
// ySampling), terminated by an empty name.
func ReadChannelList(r *xdr.Reader) (*ChannelList, error) {
	cl := &ChannelList{}
	for {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}

		pixelType, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		pLinear, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if err := r.Skip(3); err != nil {
			return nil, err
		}
		xSampling, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		ySampling, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}

		cl.channels = append(cl.channels, Channel{
			Name:      name,
			Type:      PixelType(pixelType),
			PLinear:   pLinear != 0,
			XSampling: xSampling,
			YSampling: ySampling,
		})
	}
	return cl, nil
}

// WriteChannelList writes a chlist attribute body in the channel list's
// current sorted order, followed by the empty-name terminator.
func WriteChannelList(w *xdr.BufferWriter, cl *ChannelList) {
	for _, ch := range cl.channels {
		w.WriteString(ch.Name)
		w.WriteInt32(int32(ch.Type))
		if ch.PLinear {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
		w.WriteByte(0)
		w.WriteByte(0)
		w.WriteByte(0)
		w.WriteInt32(ch.XSampling)
		w.WriteInt32(ch.YSampling)
	}
	w.WriteString("")
}
