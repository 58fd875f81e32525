package pcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// maxWAVSize is the maximum WAV file size we'll load (50 MB).
const maxWAVSize = 50 * 1024 * 1024

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// WAVInfo locates the sample data inside a WAV file.
type WAVInfo struct {
	Format     Format
	DataOffset int64
	DataSize   int64
}

// DecodeWAVHeader walks the RIFF chunks of a WAV file of the given size and
// returns the sample format and the position of the data chunk. Integer PCM
// (8/16/24/32-bit) and IEEE float (32/64-bit) are supported, including the
// extensible variants of both.
func DecodeWAVHeader(r io.ReaderAt, size int64) (WAVInfo, error) {
	if size < 44 {
		return WAVInfo{}, fmt.Errorf("wav: file too short")
	}
	hdr := make([]byte, 12)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return WAVInfo{}, fmt.Errorf("wav: %w", err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return WAVInfo{}, fmt.Errorf("wav: not a WAV file")
	}

	fmtOff, fmtSize, err := findChunk(r, size, "fmt ")
	if err != nil {
		return WAVInfo{}, err
	}
	if fmtSize < 16 {
		return WAVInfo{}, fmt.Errorf("wav: fmt chunk too short")
	}
	fc := make([]byte, min(fmtSize, 40))
	if _, err := r.ReadAt(fc, fmtOff); err != nil {
		return WAVInfo{}, fmt.Errorf("wav: fmt chunk: %w", err)
	}

	code := binary.LittleEndian.Uint16(fc[0:2])
	channels := int(binary.LittleEndian.Uint16(fc[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(fc[4:8]))
	bits := int(binary.LittleEndian.Uint16(fc[14:16]))

	if code == wavFormatExtensible {
		if len(fc) < 26 {
			return WAVInfo{}, fmt.Errorf("wav: extensible fmt chunk too short")
		}
		// The sub-format GUID starts with the plain format code.
		code = binary.LittleEndian.Uint16(fc[24:26])
	}

	f := Format{SampleRate: sampleRate, Channels: channels, BitsPerSample: bits, ByteOrder: LittleEndian}
	switch code {
	case wavFormatPCM:
		f.Encoding = SignedInt
	case wavFormatIEEEFloat:
		f.Encoding = Float
	default:
		return WAVInfo{}, fmt.Errorf("wav: unsupported format %d (only PCM and IEEE float supported)", code)
	}
	if err := f.Validate(); err != nil {
		return WAVInfo{}, fmt.Errorf("wav: %w", err)
	}

	dataOff, dataSize, err := findChunk(r, size, "data")
	if err != nil {
		return WAVInfo{}, err
	}
	if dataOff+dataSize > size {
		dataSize = size - dataOff
	}
	dataSize -= dataSize % int64(f.FrameSize())
	if dataSize <= 0 {
		return WAVInfo{}, fmt.Errorf("wav: no audio data")
	}

	return WAVInfo{Format: f, DataOffset: dataOff, DataSize: dataSize}, nil
}

// ReadWAV loads a whole WAV file into a Buffer. 8-bit files, which WAV
// stores unsigned, are converted to signed samples.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if st.Size() > maxWAVSize {
		return nil, fmt.Errorf("wav: file too large (%d bytes, max %d)", st.Size(), maxWAVSize)
	}

	info, err := DecodeWAVHeader(f, st.Size())
	if err != nil {
		return nil, err
	}
	data := make([]byte, info.DataSize)
	if _, err := f.ReadAt(data, info.DataOffset); err != nil && err != io.EOF {
		return nil, fmt.Errorf("wav: data chunk: %w", err)
	}
	if info.Format.Encoding == SignedInt && info.Format.BitsPerSample == 8 {
		for i := range data {
			data[i] ^= 0x80
		}
	}
	return &Buffer{Format: info.Format, Data: data}, nil
}

// EncodeWAV returns b wrapped in a canonical 44-byte WAV header. Big-endian
// samples are byte-swapped since WAV has no big-endian form; 8-bit samples
// are stored unsigned. Sample values are never rescaled.
func EncodeWAV(b *Buffer) ([]byte, error) {
	f := b.Format
	if err := f.Validate(); err != nil {
		return nil, err
	}
	code := uint16(wavFormatPCM)
	if f.Encoding == Float {
		code = wavFormatIEEEFloat
	}

	data := b.Data
	bps := f.BytesPerSample()
	switch {
	case f.Encoding == SignedInt && f.BitsPerSample == 8:
		// WAV stores 8-bit samples unsigned.
		data = make([]byte, len(b.Data))
		for i, v := range b.Data {
			data[i] = v ^ 0x80
		}
	case f.ByteOrder == BigEndian:
		data = make([]byte, len(b.Data))
		for off := 0; off+bps <= len(b.Data); off += bps {
			for j := 0; j < bps; j++ {
				data[off+j] = b.Data[off+bps-1-j]
			}
		}
	}

	var buf bytes.Buffer
	buf.Grow(44 + len(data))
	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }

	buf.WriteString("RIFF")
	w(uint32(36 + len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	w(uint32(16))
	w(code)
	w(uint16(f.Channels))
	w(uint32(f.SampleRate))
	w(uint32(f.SampleRate * f.FrameSize()))
	w(uint16(f.FrameSize()))
	w(uint16(f.BitsPerSample))

	buf.WriteString("data")
	w(uint32(len(data)))
	buf.Write(data)

	return buf.Bytes(), nil
}

// findChunk locates a RIFF chunk by its 4-byte ID and returns (dataOffset, dataSize).
func findChunk(r io.ReaderAt, size int64, id string) (int64, int64, error) {
	var off int64 = 12 // skip RIFF header
	hdr := make([]byte, 8)
	for off+8 <= size {
		if _, err := r.ReadAt(hdr, off); err != nil {
			return 0, 0, fmt.Errorf("wav: %w", err)
		}
		chunkSize := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		if string(hdr[0:4]) == id {
			return off + 8, chunkSize, nil
		}
		// Advance to next chunk (chunks are word-aligned)
		off += 8 + chunkSize
		if off%2 != 0 {
			off++
		}
	}
	return 0, 0, fmt.Errorf("wav: %q chunk not found", id)
}
