package eventlog

import (
	"fmt"
	"time"
)

// Kind classifies an event.
type Kind int

const (
	KindSynthesized Kind = iota
	KindPlayed
	KindUnsupported
	KindFileUnavailable
	KindMuted
	KindFailed
	KindStopped
)

// KindString returns a human-readable string for a Kind.
func KindString(k Kind) string {
	switch k {
	case KindSynthesized:
		return "synthesized"
	case KindPlayed:
		return "played"
	case KindUnsupported:
		return "unsupported"
	case KindFileUnavailable:
		return "file_unavailable"
	case KindMuted:
		return "muted"
	case KindFailed:
		return "failed"
	case KindStopped:
		return "stopped"
	default:
		return "other"
	}
}

func (k Kind) String() string { return KindString(k) }

// Event is one synthesis or playback outcome.
type Event struct {
	Time     time.Time
	RunID    string
	Priority string
	Kind     Kind
	Bytes    int           // buffer or file size, when known
	Elapsed  time.Duration // synthesis time for KindSynthesized
	Detail   string
}

func (e Event) String() string {
	s := fmt.Sprintf("%s  priority=%s  %s", e.Time.Format(time.RFC3339), e.Priority, e.Kind)
	if e.Bytes > 0 {
		s += fmt.Sprintf("  bytes=%d", e.Bytes)
	}
	if e.Elapsed > 0 {
		s += fmt.Sprintf("  elapsed=%s", e.Elapsed)
	}
	if e.Detail != "" {
		s += fmt.Sprintf("  detail=%q", e.Detail)
	}
	return s
}

// DayCutoff returns midnight (local time) of the day that is days-1 days
// before today, so that days=1 means "today only".
func DayCutoff(days int) time.Time {
	now := time.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, now.Location())
}
