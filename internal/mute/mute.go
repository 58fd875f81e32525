// Package mute implements time-boxed alarm silencing. While a mute is
// active alerts keep running but nothing is played.
package mute

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Mavwarf/alerttone/internal/paths"
)

type state struct {
	MutedUntil string `json:"muted_until"`
	Reason     string `json:"reason,omitempty"`
}

// File is mute state persisted as JSON at a fixed path.
type File struct {
	path string
	now  func() time.Time
}

// Open returns the mute state stored at path. Nothing is read until the
// state is queried.
func Open(path string) *File {
	return &File{path: path, now: time.Now}
}

// Default returns the mute state in the user data directory.
func Default() *File {
	return Open(paths.MutePath())
}

// Active reports whether a mute is currently in effect. A missing,
// unreadable, or corrupt state file means "not muted" (fail-open).
func (f *File) Active() bool {
	_, ok := f.Until()
	return ok
}

// Until returns the end of the current mute and true, or the zero time
// and false when not muted.
func (f *File) Until() (time.Time, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return time.Time{}, false
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, s.MutedUntil)
	if err != nil {
		return time.Time{}, false
	}
	if !f.now().Before(t) {
		return time.Time{}, false
	}
	return t, true
}

// Set mutes alerts for d from now and returns the end time.
func (f *File) Set(d time.Duration, reason string) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, fmt.Errorf("mute: duration must be positive, got %s", d)
	}
	until := f.now().Add(d)
	data, err := json.MarshalIndent(state{MutedUntil: until.Format(time.RFC3339), Reason: reason}, "", "  ")
	if err != nil {
		return time.Time{}, fmt.Errorf("mute: marshal: %w", err)
	}
	if err := paths.AtomicWrite(f.path, data); err != nil {
		return time.Time{}, fmt.Errorf("mute: write: %w", err)
	}
	return until, nil
}

// Clear lifts any mute. Clearing when not muted is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("mute: remove %s: %w", f.path, err)
	}
	return nil
}

// Path returns the state file location.
func (f *File) Path() string { return f.path }
