package eventlog

import (
	"encoding/json"
	"time"
)

type jsonEvent struct {
	Time      string `json:"time"`
	RunID     string `json:"run_id"`
	Priority  string `json:"priority"`
	Event     string `json:"event"`
	Bytes     int    `json:"bytes,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// MarshalJSON encodes e with its kind as a string, the form published to
// remote event sinks.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEvent{
		Time:      e.Time.Format(time.RFC3339),
		RunID:     e.RunID,
		Priority:  e.Priority,
		Event:     e.Kind.String(),
		Bytes:     e.Bytes,
		ElapsedMS: e.Elapsed.Milliseconds(),
		Detail:    e.Detail,
	})
}
