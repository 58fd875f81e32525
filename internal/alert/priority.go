// Package alert maps priority levels to tone profiles and drives playback
// of the active alert.
package alert

import (
	"strings"

	"github.com/Mavwarf/alerttone/internal/pcm"
	"github.com/Mavwarf/alerttone/internal/tone"
)

// Priority is an alert level.
type Priority int

const (
	Low Priority = iota
	Medium
	High
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// ParsePriority maps a mode name to a Priority. Anything other than
// "high" or "medium" selects Low.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return High
	case "medium":
		return Medium
	default:
		return Low
	}
}

// Profile is the fixed tone for a synthesized priority.
type Profile struct {
	Spec   tone.Spec
	Format pcm.Format
}

// ToneSampleRate is the rate the high and medium tones are rendered at.
const ToneSampleRate = 20000

// LowFormat describes the raw file played by the low-priority mode.
var LowFormat = pcm.Int32Mono(44100, pcm.LittleEndian)

var profiles = map[Priority]Profile{
	High: {
		Spec: tone.Spec{
			Frequency: 800,
			Duration:  11.520,
			Sequence: tone.Sequence{
				160, -80, 160, -80, 160, -320, 160, -80, 160, -720,
				160, -80, 160, -80, 160, -320, 160, -80, 160, -8080,
			},
			Volume: 1.0,
		},
		Format: pcm.Float32Mono(ToneSampleRate, pcm.LittleEndian),
	},
	Medium: {
		Spec: tone.Spec{
			Frequency: 800,
			Duration:  17.200,
			Sequence:  tone.Sequence{240, -160, 240, -160, 240, -16160},
			Volume:    1.0,
		},
		Format: pcm.Float32Mono(ToneSampleRate, pcm.LittleEndian),
	},
}

// ProfileFor returns the tone profile of p. Low has none: it plays a file.
func ProfileFor(p Priority) (Profile, bool) {
	prof, ok := profiles[p]
	return prof, ok
}
