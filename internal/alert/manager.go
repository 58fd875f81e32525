package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/audio"
	"github.com/Mavwarf/alerttone/internal/eventlog"
	"github.com/Mavwarf/alerttone/internal/pcm"
)

// DefaultLowInterval is the low-priority re-trigger period.
const DefaultLowInterval = 500 * time.Millisecond

// DefaultMutePoll is how often a tone skipped by a mute checks whether the
// mute has expired.
const DefaultMutePoll = time.Second

// Observer receives alert events. Implementations must not block.
type Observer interface {
	Observe(eventlog.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(eventlog.Event)

func (f ObserverFunc) Observe(e eventlog.Event) { f(e) }

// Options configures a Manager.
type Options struct {
	Volume      float64       // user volume, 0.0 to 1.0
	LowSource   string        // file played by the low-priority mode
	LowInterval time.Duration // zero means DefaultLowInterval
	Repeat      bool          // replay tones every Spec.Duration
	Muted       func() bool   // nil means never muted
	MutePoll    time.Duration // zero means DefaultMutePoll
	Logger      *zap.Logger
	Observers   []Observer
}

// Manager owns the single active alert of the process. Activating a new
// priority stops the previous one; outputs are never mixed.
type Manager struct {
	sink     audio.Sink
	opts     Options
	logger   *zap.Logger
	runID    string
	profiles map[Priority]Profile
	now      func() time.Time

	mu     sync.Mutex
	active *activeAlert
}

type activeAlert struct {
	priority Priority
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewManager returns a Manager playing through sink.
func NewManager(sink audio.Sink, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LowInterval <= 0 {
		opts.LowInterval = DefaultLowInterval
	}
	if opts.MutePoll <= 0 {
		opts.MutePoll = DefaultMutePoll
	}
	if opts.Volume < 0 {
		opts.Volume = 0
	}
	if opts.Volume > 1 {
		opts.Volume = 1
	}
	runID := uuid.NewString()
	return &Manager{
		sink:     sink,
		opts:     opts,
		logger:   opts.Logger.With(zap.String("run_id", runID)),
		runID:    runID,
		profiles: profiles,
		now:      time.Now,
	}
}

// RunID identifies this Manager's events.
func (m *Manager) RunID() string { return m.runID }

// Run activates p and blocks until ctx is done, then stops playback.
func (m *Manager) Run(ctx context.Context, p Priority) error {
	if err := m.Activate(ctx, p); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return nil
}

// Activate replaces the active alert with p and starts it. Tones are
// synthesized once and played immediately; the low priority starts its
// re-trigger timer. Unsupported formats and unavailable files are logged
// and reported to observers, not returned. The alert runs until ctx is
// done or Stop or Activate is called.
func (m *Manager) Activate(ctx context.Context, p Priority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()

	actx, cancel := context.WithCancel(ctx)
	a := &activeAlert{priority: p, cancel: cancel, done: make(chan struct{})}

	if prof, ok := m.profiles[p]; ok {
		buf, err := m.synthesize(p, prof)
		if err != nil {
			cancel()
			return err
		}
		skipped := false
		out, err := m.sink.Configure(buf.Format)
		if err != nil {
			m.reportConfigure(p, buf.Format, err)
			out = nil
		} else {
			skipped = m.playTone(p, out, buf, prof.Spec.Volume*m.opts.Volume)
		}
		m.active = a
		go m.runTone(actx, a, prof, out, buf, skipped)
		return nil
	}

	m.active = a
	go m.runLow(actx, a)
	return nil
}

// Stop silences the active alert, if any, and waits for it to wind down.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.active == nil {
		return
	}
	m.active.cancel()
	<-m.active.done
	m.active = nil
}

func (m *Manager) synthesize(p Priority, prof Profile) (*pcm.Buffer, error) {
	start := time.Now()
	buf, err := prof.Spec.Synthesize(prof.Format)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	m.logger.Debug("tone synthesized",
		zap.Stringer("priority", p),
		zap.Stringer("format", buf.Format),
		zap.String("size", humanize.Bytes(uint64(buf.Len()))),
		zap.Duration("length", buf.Duration()),
		zap.Duration("elapsed", elapsed))
	m.emit(eventlog.Event{Priority: p.String(), Kind: eventlog.KindSynthesized, Bytes: buf.Len(), Elapsed: elapsed})
	return buf, nil
}

// runTone keeps a tone alert alive until ctx is done. Without Repeat the
// tone plays once; if that play was skipped by a mute, it is played as soon
// as the mute expires.
func (m *Manager) runTone(ctx context.Context, a *activeAlert, prof Profile, out audio.Output, buf *pcm.Buffer, skipped bool) {
	defer close(a.done)
	if out == nil {
		<-ctx.Done()
		return
	}
	defer m.stopOutput(a.priority, out)

	volume := prof.Spec.Volume * m.opts.Volume
	if !m.opts.Repeat {
		if skipped {
			m.playAfterMute(ctx, a.priority, out, buf, volume)
		}
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(prof.Spec.Period())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.playTone(a.priority, out, buf, volume)
		}
	}
}

func (m *Manager) playAfterMute(ctx context.Context, p Priority, out audio.Output, buf *pcm.Buffer, volume float64) {
	ticker := time.NewTicker(m.opts.MutePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if m.muted() {
			continue
		}
		if !m.playTone(p, out, buf, volume) {
			return
		}
	}
}

// playTone plays buf once and reports whether a mute skipped it.
func (m *Manager) playTone(p Priority, out audio.Output, buf *pcm.Buffer, volume float64) bool {
	if m.muted() {
		m.logger.Info("alert muted, skipping playback", zap.Stringer("priority", p))
		m.emit(eventlog.Event{Priority: p.String(), Kind: eventlog.KindMuted})
		return true
	}
	if err := out.Play(buf.Reader(), volume); err != nil {
		m.logger.Warn("playback failed", zap.Stringer("priority", p), zap.Error(err))
		m.emit(eventlog.Event{Priority: p.String(), Kind: eventlog.KindFailed, Detail: err.Error()})
		return false
	}
	m.logger.Info("alert playing",
		zap.Stringer("priority", p),
		zap.Float64("volume", volume),
		zap.String("size", humanize.Bytes(uint64(buf.Len()))))
	m.emit(eventlog.Event{Priority: p.String(), Kind: eventlog.KindPlayed, Bytes: buf.Len()})
	return false
}

// runLow re-triggers the low-priority file every LowInterval. The file is
// opened lazily and re-tried on every tick until it can be read; the
// output is configured on the first successful open. Observers only hear
// about a tick when its outcome differs from the previous one.
func (m *Manager) runLow(ctx context.Context, a *activeAlert) {
	defer close(a.done)

	var (
		src  *audio.FileSource
		out  audio.Output
		last = eventlog.Kind(-1)
	)
	defer func() {
		if out != nil {
			m.stopOutput(a.priority, out)
		}
		if src != nil {
			src.Close()
		}
	}()

	report := func(e eventlog.Event) {
		if e.Kind == last {
			return
		}
		last = e.Kind
		e.Priority = a.priority.String()
		m.emit(e)
	}

	ticker := time.NewTicker(m.opts.LowInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if m.muted() {
			m.logger.Debug("alert muted, skipping playback", zap.Stringer("priority", a.priority))
			report(eventlog.Event{Kind: eventlog.KindMuted})
			continue
		}

		if src == nil {
			s, err := audio.OpenFile(m.opts.LowSource, LowFormat)
			if err != nil {
				kind := eventlog.KindFileUnavailable
				if errors.Is(err, audio.ErrUnsupportedFormat) {
					kind = eventlog.KindUnsupported
				}
				if kind != last {
					m.logger.Warn("low-priority source not playable, retrying",
						zap.String("path", m.opts.LowSource),
						zap.Duration("interval", m.opts.LowInterval),
						zap.Error(err))
				}
				report(eventlog.Event{Kind: kind, Detail: m.opts.LowSource})
				continue
			}
			src = s
			m.logger.Info("low-priority source opened",
				zap.String("path", src.Path()),
				zap.Stringer("format", src.Format()),
				zap.String("size", humanize.Bytes(uint64(src.Size()))))
		}

		if out == nil {
			o, err := m.sink.Configure(src.Format())
			if err != nil {
				kind := configureKind(err)
				if kind != last {
					m.logger.Warn("audio output unavailable, playback skipped",
						zap.Stringer("priority", a.priority),
						zap.Stringer("format", src.Format()),
						zap.Error(err))
				}
				report(eventlog.Event{Kind: kind, Detail: err.Error()})
				continue
			}
			out = o
		}

		if err := out.Play(src, m.opts.Volume); err != nil {
			if last != eventlog.KindFailed {
				m.logger.Warn("playback failed", zap.Stringer("priority", a.priority), zap.Error(err))
			}
			report(eventlog.Event{Kind: eventlog.KindFailed, Detail: err.Error()})
			continue
		}
		report(eventlog.Event{Kind: eventlog.KindPlayed, Bytes: int(src.Size())})
	}
}

func configureKind(err error) eventlog.Kind {
	if errors.Is(err, audio.ErrUnsupportedFormat) {
		return eventlog.KindUnsupported
	}
	return eventlog.KindFailed
}

func (m *Manager) reportConfigure(p Priority, f pcm.Format, err error) {
	m.logger.Warn("audio output unavailable, playback skipped",
		zap.Stringer("priority", p),
		zap.Stringer("format", f),
		zap.Error(err))
	m.emit(eventlog.Event{Priority: p.String(), Kind: configureKind(err), Detail: err.Error()})
}

func (m *Manager) stopOutput(p Priority, out audio.Output) {
	if err := out.Stop(); err != nil {
		m.logger.Warn("stop output", zap.Stringer("priority", p), zap.Error(err))
	}
	m.emit(eventlog.Event{Priority: p.String(), Kind: eventlog.KindStopped})
}

func (m *Manager) muted() bool {
	return m.opts.Muted != nil && m.opts.Muted()
}

func (m *Manager) emit(e eventlog.Event) {
	e.Time = m.now()
	e.RunID = m.runID
	for _, o := range m.opts.Observers {
		o.Observe(e)
	}
}
