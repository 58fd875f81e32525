package pcm

import (
	"bytes"
	"io"
	"time"
)

// Buffer is a fully materialized block of encoded samples. It carries no
// header and no padding: len(Data) is always a multiple of the format's
// frame size. Buffers are not modified after construction.
type Buffer struct {
	Format Format
	Data   []byte
}

// Len is the buffer size in bytes.
func (b *Buffer) Len() int { return len(b.Data) }

// Frames is the number of sample frames held.
func (b *Buffer) Frames() int { return b.Format.Frames(len(b.Data)) }

// Duration is the playback time of the whole buffer.
func (b *Buffer) Duration() time.Duration { return b.Format.Duration(len(b.Data)) }

// Reader returns an independent reader positioned at offset 0. Each call
// yields a new cursor over the same bytes, so a buffer can be replayed any
// number of times.
func (b *Buffer) Reader() io.ReadSeeker { return bytes.NewReader(b.Data) }
