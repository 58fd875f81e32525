package tone

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sequence is an on/off cadence in milliseconds. A positive entry keeps the
// tone on for that many milliseconds, a negative entry keeps it off. Time
// past the last entry is silence; the sequence never repeats.
type Sequence []int

// Validate rejects zero entries, which would stall the cadence.
func (s Sequence) Validate() error {
	for i, v := range s {
		if v == 0 {
			return fmt.Errorf("%w: sequence entry %d is zero", ErrInvalidArgument, i)
		}
	}
	return nil
}

// Duration is the time covered by all entries.
func (s Sequence) Duration() time.Duration {
	var ms int
	for _, v := range s {
		ms += abs(v)
	}
	return time.Duration(ms) * time.Millisecond
}

// OnTime is the total time the tone sounds.
func (s Sequence) OnTime() time.Duration {
	var ms int
	for _, v := range s {
		if v > 0 {
			ms += v
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// Pulses counts the on segments.
func (s Sequence) Pulses() int {
	var n int
	for _, v := range s {
		if v > 0 {
			n++
		}
	}
	return n
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// gate replays a Sequence one millisecond bucket at a time. A segment is
// only advanced when a new bucket starts and the previous segment's
// countdown has run out, so boundaries snap to whole milliseconds.
type gate struct {
	seq    Sequence
	idx    int
	step   int
	count  int
	on     bool
	lastMS int
	tail   int // length of the trailing silence once seq is exhausted
}

func newGate(seq Sequence, tail int) *gate {
	return &gate{seq: seq, lastMS: -1, tail: tail}
}

// at reports whether the tone is on during millisecond ms. Calls must use
// non-decreasing ms values.
func (g *gate) at(ms int) bool {
	if ms == g.lastMS {
		return g.on
	}
	g.lastMS = ms
	if g.step == g.count {
		g.step = 0
		if g.idx >= len(g.seq) {
			g.count = g.tail
			g.on = false
		} else {
			v := g.seq[g.idx]
			g.count = abs(v)
			g.on = v > 0
		}
		g.idx++
	}
	g.step++
	return g.on
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
