// Package tone synthesizes gated continuous-wave alert tones into PCM
// buffers.
package tone

import (
	"errors"
	"fmt"
	"math"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

// ErrInvalidArgument is returned for synthesis parameters outside their
// domain. No partial buffer is ever returned alongside it.
var ErrInvalidArgument = errors.New("tone: invalid argument")

// maxSamples bounds a single buffer to 1 GiB of float32 samples.
const maxSamples = 1 << 28

// Synthesize renders a gated sine of the given frequency (Hz) for duration
// seconds at sampleRate as 32-bit little-endian float mono samples.
func Synthesize(frequency, duration float64, seq Sequence, sampleRate int) (*pcm.Buffer, error) {
	return SynthesizeFormat(frequency, duration, seq, pcm.Float32Mono(sampleRate, pcm.LittleEndian))
}

// SynthesizeFormat is Synthesize for an explicit format, which must be
// 32-bit float mono; format.ByteOrder selects the sample byte order.
//
// The sample count is floor(duration * sampleRate). The cadence is tracked
// in whole milliseconds, bucket(i) = i / (sampleRate/1000), so sample rates
// below 1000 Hz are rejected.
func SynthesizeFormat(frequency, duration float64, seq Sequence, format pcm.Format) (*pcm.Buffer, error) {
	if err := checkArgs(frequency, duration, format); err != nil {
		return nil, err
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}

	rate := float64(format.SampleRate)
	total := duration * rate
	if total >= maxSamples {
		return nil, fmt.Errorf("%w: %v s at %d Hz exceeds %d samples", ErrInvalidArgument, duration, format.SampleRate, maxSamples)
	}
	n := int(total) // truncation drops a fractional trailing sample

	perMS := format.SampleRate / 1000
	data := make([]byte, n*4)
	g := newGate(seq, n)

	for i := 0; i < n; i++ {
		var v float32
		if g.at(i / perMS) {
			v = float32(math.Sin(2 * math.Pi * frequency * float64(i) / rate))
		}
		pcm.PutFloat32(data[i*4:], v, format.ByteOrder)
	}

	return &pcm.Buffer{Format: format, Data: data}, nil
}

func checkArgs(frequency, duration float64, format pcm.Format) error {
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return fmt.Errorf("%w: frequency %v", ErrInvalidArgument, frequency)
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return fmt.Errorf("%w: duration %v", ErrInvalidArgument, duration)
	}
	if format.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidArgument, format.SampleRate)
	}
	if format.SampleRate/1000 == 0 {
		return fmt.Errorf("%w: sample rate %d is below 1000 Hz", ErrInvalidArgument, format.SampleRate)
	}
	if format.Encoding != pcm.Float || format.BitsPerSample != 32 || format.Channels != 1 {
		return fmt.Errorf("%w: format %s is not 32-bit float mono", ErrInvalidArgument, format)
	}
	if format.ByteOrder != pcm.LittleEndian && format.ByteOrder != pcm.BigEndian {
		return fmt.Errorf("%w: byte order %d", ErrInvalidArgument, int(format.ByteOrder))
	}
	return nil
}
