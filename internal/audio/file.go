package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

// FileSource is an open audio file positioned over its sample data. Raw
// files are played whole in the format given to OpenFile; WAV files carry
// their own format and only the data chunk is played. 8-bit WAV files are
// loaded into memory as signed samples.
type FileSource struct {
	path   string
	f      *os.File // nil once the data is held in memory
	r      io.ReadSeeker
	size   int64
	format pcm.Format
}

// OpenFile opens path for playback. Errors wrap ErrFileUnavailable when the
// file cannot be opened and ErrUnsupportedFormat when a WAV header
// describes samples that cannot be played.
func OpenFile(path string, raw pcm.Format) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileUnavailable, path)
	}

	src := &FileSource{path: path, f: f, format: raw}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		info, err := pcm.DecodeWAVHeader(f, st.Size())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
		}
		if info.Format.BitsPerSample == 8 {
			f.Close()
			buf, err := pcm.ReadWAV(path)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
			}
			return &FileSource{path: path, r: buf.Reader(), size: int64(buf.Len()), format: buf.Format}, nil
		}
		src.format = info.Format
		src.r = io.NewSectionReader(f, info.DataOffset, info.DataSize)
		src.size = info.DataSize
	} else {
		if err := raw.Validate(); err != nil {
			f.Close()
			return nil, err
		}
		src.r = io.NewSectionReader(f, 0, st.Size())
		src.size = st.Size()
	}
	return src, nil
}

// Read implements io.Reader.
func (s *FileSource) Read(p []byte) (int, error) { return s.r.Read(p) }

// Seek implements io.Seeker relative to the start of the sample data.
func (s *FileSource) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

// Format is the sample format of the data.
func (s *FileSource) Format() pcm.Format { return s.format }

// Size is the sample data length in bytes.
func (s *FileSource) Size() int64 { return s.size }

// Path returns the file path given to OpenFile.
func (s *FileSource) Path() string { return s.path }

// Close closes the underlying file.
func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
