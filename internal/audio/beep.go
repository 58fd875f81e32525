package audio

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

// BeepSink plays through the github.com/gopxl/beep/v2 speaker. The speaker
// runs at the rate of the first configured format; other rates are
// resampled.
type BeepSink struct {
	logger *zap.Logger

	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

// NewBeepSink returns a beep backed Sink.
func NewBeepSink(logger *zap.Logger) *BeepSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeepSink{logger: logger}
}

func (s *BeepSink) Configure(f pcm.Format) (Output, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if f.Channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}
	rate, err := s.ensureInitialized(beep.SampleRate(f.SampleRate))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("beep output configured", zap.Stringer("format", f), zap.Int("speaker_rate", int(rate)))
	return &beepOutput{format: f, speakerRate: rate}, nil
}

// ensureInitialized initializes the speaker if not already done.
func (s *BeepSink) ensureInitialized(sampleRate beep.SampleRate) (beep.SampleRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return s.sampleRate, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return 0, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	s.sampleRate = sampleRate
	s.initialized = true
	return sampleRate, nil
}

// Close stops all playback and releases the speaker.
func (s *BeepSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		speaker.Close()
		s.initialized = false
	}
}

type beepOutput struct {
	format      pcm.Format
	speakerRate beep.SampleRate

	mu   sync.Mutex
	ctrl *beep.Ctrl
}

func (o *beepOutput) Format() pcm.Format { return o.format }

func (o *beepOutput) Play(src io.ReadSeeker, volume float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	if err := rewind(src); err != nil {
		return err
	}

	var streamer beep.Streamer = newFrameStreamer(src, o.format)
	if rate := beep.SampleRate(o.format.SampleRate); rate != o.speakerRate {
		streamer = beep.Resample(4, rate, o.speakerRate, streamer)
	}
	if volume = clampVolume(volume); volume < 1 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   math.Log2(volume),
			Silent:   volume == 0,
		}
	}

	o.ctrl = &beep.Ctrl{Streamer: streamer}
	speaker.Play(o.ctrl)
	return nil
}

func (o *beepOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
	return nil
}

func (o *beepOutput) stopLocked() {
	if o.ctrl == nil {
		return
	}
	// A Ctrl without a streamer is dropped by the speaker mixer.
	speaker.Lock()
	o.ctrl.Streamer = nil
	speaker.Unlock()
	o.ctrl = nil
}

// frameStreamer decodes interleaved PCM from r into beep's stereo float
// frames. Mono input is duplicated onto both channels.
type frameStreamer struct {
	r      io.Reader
	format pcm.Format
	buf    []byte
	err    error
}

func newFrameStreamer(r io.Reader, f pcm.Format) *frameStreamer {
	return &frameStreamer{r: r, format: f}
}

func (s *frameStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}
	fs := s.format.FrameSize()
	bps := s.format.BytesPerSample()
	need := len(samples) * fs
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	n, err := io.ReadFull(s.r, s.buf[:need])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		s.err = err
	}

	frames := n / fs
	for i := 0; i < frames; i++ {
		off := i * fs
		left := pcm.DecodeSample(s.buf[off:], s.format)
		right := left
		if s.format.Channels > 1 {
			right = pcm.DecodeSample(s.buf[off+bps:], s.format)
		}
		samples[i] = [2]float64{left, right}
	}
	if frames == 0 {
		return 0, false
	}
	return frames, true
}

func (s *frameStreamer) Err() error { return s.err }
