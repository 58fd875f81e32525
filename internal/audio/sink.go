// Package audio hands PCM buffers and files to an output device.
package audio

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

var (
	// ErrUnsupportedFormat is returned by Sink.Configure when the backend
	// cannot render the requested format.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")

	// ErrFileUnavailable is returned when a file source is missing or
	// unreadable.
	ErrFileUnavailable = errors.New("audio: file unavailable")
)

// Sink is a playback backend.
type Sink interface {
	// Configure prepares an output for samples in format f.
	Configure(f pcm.Format) (Output, error)
}

// Output plays sources encoded in a single, fixed format.
type Output interface {
	Format() pcm.Format

	// Play rewinds src to its start and begins streaming it without
	// blocking. A Play issued while an earlier one is still sounding
	// stops the earlier stream; outputs never mix.
	Play(src io.ReadSeeker, volume float64) error

	// Stop silences the output. Stopping an idle output is a no-op.
	Stop() error
}

// Backend names accepted by New.
const (
	BackendOto  = "oto"
	BackendBeep = "beep"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendOto, BackendBeep}

// New returns the named backend.
func New(name string, logger *zap.Logger) (Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch name {
	case "", BackendOto:
		return NewOtoSink(logger), nil
	case BackendBeep:
		return NewBeepSink(logger), nil
	default:
		return nil, fmt.Errorf("audio: unknown backend %q", name)
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rewind(src io.ReadSeeker) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("audio: seek to start: %w", err)
	}
	return nil
}
