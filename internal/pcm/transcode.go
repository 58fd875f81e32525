package pcm

import (
	"io"
)

// NewFloat32Reader returns a reader that yields the samples of r, encoded
// as f, converted to 32-bit little-endian floats with the same channel
// layout. When f already is 32-bit little-endian float, r is returned as is.
func NewFloat32Reader(r io.Reader, f Format) io.Reader {
	if f.Encoding == Float && f.BitsPerSample == 32 && f.ByteOrder == LittleEndian {
		return r
	}
	return &float32Reader{src: r, format: f}
}

type float32Reader struct {
	src    io.Reader
	format Format
	in     []byte
	out    []byte // converted bytes not yet returned
	err    error
}

func (t *float32Reader) Read(p []byte) (int, error) {
	for len(t.out) == 0 {
		if t.err != nil {
			return 0, t.err
		}
		t.fill(len(p))
	}
	n := copy(p, t.out)
	t.out = t.out[n:]
	return n, nil
}

// fill converts roughly want output bytes worth of whole input samples.
func (t *float32Reader) fill(want int) {
	bps := t.format.BytesPerSample()
	samples := want / 4
	if samples < 1 {
		samples = 1
	}
	if cap(t.in) < samples*bps {
		t.in = make([]byte, samples*bps)
	}
	in := t.in[:samples*bps]

	n, err := io.ReadFull(t.src, in)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	t.err = err

	whole := n / bps
	out := make([]byte, whole*4)
	for i := 0; i < whole; i++ {
		v := DecodeSample(in[i*bps:], t.format)
		PutFloat32(out[i*4:], float32(v), LittleEndian)
	}
	t.out = out
}
