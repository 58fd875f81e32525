package tone

import (
	"fmt"
	"math"
	"time"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

// Spec describes one alert tone: a carrier frequency gated by Sequence for
// Duration seconds. Volume is applied at playback, never baked into the
// samples.
type Spec struct {
	Frequency float64 // Hz
	Duration  float64 // seconds
	Sequence  Sequence
	Volume    float64 // 0.0 to 1.0
}

// Validate checks every field, including the volume range.
func (s Spec) Validate() error {
	if !(s.Frequency > 0) || math.IsInf(s.Frequency, 0) {
		return fmt.Errorf("%w: frequency %v", ErrInvalidArgument, s.Frequency)
	}
	if !(s.Duration > 0) || math.IsInf(s.Duration, 0) {
		return fmt.Errorf("%w: duration %v", ErrInvalidArgument, s.Duration)
	}
	if !(s.Volume >= 0 && s.Volume <= 1) {
		return fmt.Errorf("%w: volume %v", ErrInvalidArgument, s.Volume)
	}
	return s.Sequence.Validate()
}

// Period is Duration as a time.Duration.
func (s Spec) Period() time.Duration {
	return time.Duration(s.Duration * float64(time.Second))
}

// Synthesize renders the spec in the given 32-bit float mono format.
func (s Spec) Synthesize(format pcm.Format) (*pcm.Buffer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return SynthesizeFormat(s.Frequency, s.Duration, s.Sequence, format)
}
