// Package pcm describes raw pulse-code audio: sample formats, fixed-length
// sample buffers, explicit sample codecs and the WAV container.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/cpu"
)

// ErrInvalidFormat is returned by Format.Validate.
var ErrInvalidFormat = errors.New("pcm: invalid format")

// Encoding is the numeric representation of a single sample.
type Encoding int

const (
	Float Encoding = iota
	SignedInt
)

func (e Encoding) String() string {
	switch e {
	case Float:
		return "float"
	case SignedInt:
		return "signed-int"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ByteOrder is the order in which the bytes of a sample are stored.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "be"
	}
	return "le"
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// NativeByteOrder returns the byte order of the running CPU.
func NativeByteOrder() ByteOrder {
	if cpu.IsBigEndian {
		return BigEndian
	}
	return LittleEndian
}

// Format describes interleaved PCM samples.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Encoding      Encoding
	ByteOrder     ByteOrder
}

// Float32Mono returns a single-channel 32-bit float format in the given byte order.
func Float32Mono(sampleRate int, order ByteOrder) Format {
	return Format{SampleRate: sampleRate, Channels: 1, BitsPerSample: 32, Encoding: Float, ByteOrder: order}
}

// Int32Mono returns a single-channel 32-bit signed integer format in the given byte order.
func Int32Mono(sampleRate int, order ByteOrder) Format {
	return Format{SampleRate: sampleRate, Channels: 1, BitsPerSample: 32, Encoding: SignedInt, ByteOrder: order}
}

// Validate reports whether f describes a format this package can encode
// and decode.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidFormat, f.Channels)
	}
	switch f.Encoding {
	case Float:
		if f.BitsPerSample != 32 && f.BitsPerSample != 64 {
			return fmt.Errorf("%w: %d-bit float", ErrInvalidFormat, f.BitsPerSample)
		}
	case SignedInt:
		switch f.BitsPerSample {
		case 8, 16, 24, 32:
		default:
			return fmt.Errorf("%w: %d-bit signed int", ErrInvalidFormat, f.BitsPerSample)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidFormat, f.Encoding)
	}
	if f.ByteOrder != LittleEndian && f.ByteOrder != BigEndian {
		return fmt.Errorf("%w: byte order %d", ErrInvalidFormat, int(f.ByteOrder))
	}
	return nil
}

// BytesPerSample is the size of one sample of one channel.
func (f Format) BytesPerSample() int { return f.BitsPerSample / 8 }

// FrameSize is the size of one sample across all channels.
func (f Format) FrameSize() int { return f.BytesPerSample() * f.Channels }

// Frames returns how many whole frames fit in n bytes.
func (f Format) Frames(n int) int {
	fs := f.FrameSize()
	if fs == 0 {
		return 0
	}
	return n / fs
}

// Duration returns the playback time of n bytes.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.Frames(n)) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	var kind string
	if f.Encoding == Float {
		kind = "f"
	} else {
		kind = "s"
	}
	return fmt.Sprintf("%s%d%s %dHz %dch", kind, f.BitsPerSample, f.ByteOrder, f.SampleRate, f.Channels)
}
