package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/pcm"
)

// oto allows a single context per process, so its rate and channel count
// are fixed by the first format configured.
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
	otoInitErr  error
)

func getContext(rate, channels int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil && otoInitErr == nil {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
			otoRate, otoChannels = rate, channels
		}
	}
	if otoInitErr != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", otoInitErr)
	}
	if rate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("%w: device already open at %d Hz %d ch, requested %d Hz %d ch",
			ErrUnsupportedFormat, otoRate, otoChannels, rate, channels)
	}
	return otoCtx, nil
}

// otoSupports reports whether samples in f can be fed to an oto float32
// context, converting on the fly where needed.
func otoSupports(f pcm.Format) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if f.Channels > 2 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}
	switch {
	case f.Encoding == pcm.Float && f.BitsPerSample == 32:
	case f.Encoding == pcm.SignedInt && (f.BitsPerSample == 16 || f.BitsPerSample == 32):
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return nil
}

// OtoSink plays through github.com/ebitengine/oto/v3. Everything is
// rendered as 32-bit little-endian float; integer and big-endian sources
// are converted while streaming.
type OtoSink struct {
	logger *zap.Logger
}

// NewOtoSink returns an oto backed Sink. The device is opened lazily by
// the first Configure.
func NewOtoSink(logger *zap.Logger) *OtoSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtoSink{logger: logger}
}

func (s *OtoSink) Configure(f pcm.Format) (Output, error) {
	if err := otoSupports(f); err != nil {
		return nil, err
	}
	ctx, err := getContext(f.SampleRate, f.Channels)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("oto output configured", zap.Stringer("format", f))
	return &otoOutput{ctx: ctx, format: f, logger: s.logger}, nil
}

type otoOutput struct {
	ctx    *oto.Context
	format pcm.Format
	logger *zap.Logger

	mu     sync.Mutex
	player *oto.Player
}

func (o *otoOutput) Format() pcm.Format { return o.format }

func (o *otoOutput) Play(src io.ReadSeeker, volume float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// The previous player may still be reading src.
	if err := o.stopLocked(); err != nil {
		o.logger.Debug("closing previous player", zap.Error(err))
	}
	if err := rewind(src); err != nil {
		return err
	}

	player := o.ctx.NewPlayer(pcm.NewFloat32Reader(src, o.format))
	player.SetVolume(clampVolume(volume))
	player.Play()
	o.player = player
	return nil
}

func (o *otoOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopLocked()
}

func (o *otoOutput) stopLocked() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	return err
}
