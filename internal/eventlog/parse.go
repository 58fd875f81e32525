package eventlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseKind is the inverse of KindString.
func ParseKind(s string) (Kind, bool) {
	for k := KindSynthesized; k <= KindStopped; k++ {
		if KindString(k) == s {
			return k, true
		}
	}
	return 0, false
}

// FormatLine renders e as a single log line:
//
//	2026-01-02T03:04:05Z  run=…  priority=low  event=played  bytes=176400
func FormatLine(e Event) string {
	var b strings.Builder
	b.WriteString(e.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "  run=%s  priority=%s  event=%s", e.RunID, e.Priority, e.Kind)
	if e.Bytes > 0 {
		fmt.Fprintf(&b, "  bytes=%d", e.Bytes)
	}
	if e.Elapsed > 0 {
		fmt.Fprintf(&b, "  elapsed_us=%d", e.Elapsed.Microseconds())
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "  detail=%q", e.Detail)
	}
	return b.String()
}

// ParseLine parses a line written by FormatLine. Malformed lines report
// false.
func ParseLine(line string) (Event, bool) {
	ts, ok := ExtractTimestamp(line)
	if !ok {
		return Event{}, false
	}
	kind, ok := ParseKind(extractField(line, "event"))
	if !ok {
		return Event{}, false
	}
	e := Event{
		Time:     ts,
		RunID:    extractField(line, "run"),
		Priority: extractField(line, "priority"),
		Kind:     kind,
	}
	if v := extractField(line, "bytes"); v != "" {
		e.Bytes, _ = strconv.Atoi(v)
	}
	if v := extractField(line, "elapsed_us"); v != "" {
		us, _ := strconv.ParseInt(v, 10, 64)
		e.Elapsed = time.Duration(us) * time.Microsecond
	}
	if i := strings.Index(line, "  detail="); i >= 0 {
		e.Detail = extractQuoted(line[i+len("  detail="):])
	}
	return e, true
}

// ParseEntries parses every well-formed line of content. Malformed lines
// are silently skipped.
func ParseEntries(content string) []Event {
	var events []Event
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if e, ok := ParseLine(line); ok {
			events = append(events, e)
		}
	}
	return events
}

// ExtractTimestamp parses the RFC3339 timestamp at the start of a log line
// (everything before the first "  " double-space separator).
func ExtractTimestamp(line string) (time.Time, bool) {
	tsEnd := strings.Index(line, "  ")
	if tsEnd < 0 {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, line[:tsEnd])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// extractField returns the value after "key=" in a space-separated line.
// Returns "" if not found.
func extractField(line, key string) string {
	prefix := key + "="
	for _, field := range strings.Fields(line) {
		if strings.HasPrefix(field, prefix) {
			return field[len(prefix):]
		}
	}
	return ""
}

// extractQuoted extracts a Go %q-encoded string from the start of s.
// It finds the matching closing quote (respecting backslash escapes),
// then uses strconv.Unquote to decode the value. Returns "" on failure.
func extractQuoted(s string) string {
	if len(s) == 0 || s[0] != '"' {
		return ""
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++ // skip escaped character
			continue
		}
		if s[i] == '"' {
			text, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return ""
			}
			return text
		}
	}
	return ""
}
