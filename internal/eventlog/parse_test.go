package eventlog

import (
	"testing"
	"time"
)

func TestFormatParseLine(t *testing.T) {
	e := Event{
		Time:     time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC),
		RunID:    "7d1c",
		Priority: "high",
		Kind:     KindSynthesized,
		Bytes:    921600,
		Elapsed:  1500 * time.Microsecond,
		Detail:   `say "hi"  twice`,
	}
	line := FormatLine(e)
	want := `2026-02-22T10:00:00Z  run=7d1c  priority=high  event=synthesized  bytes=921600  elapsed_us=1500  detail="say \"hi\"  twice"`
	if line != want {
		t.Fatalf("FormatLine =\n%s\nwant\n%s", line, want)
	}

	got, ok := ParseLine(line)
	if !ok {
		t.Fatal("ParseLine failed")
	}
	if !got.Time.Equal(e.Time) || got.RunID != e.RunID || got.Priority != e.Priority ||
		got.Kind != e.Kind || got.Bytes != e.Bytes || got.Elapsed != e.Elapsed || got.Detail != e.Detail {
		t.Errorf("ParseLine = %+v, want %+v", got, e)
	}
}

func TestParseLineMinimal(t *testing.T) {
	got, ok := ParseLine("2026-02-22T10:00:00+01:00  run=  priority=low  event=file_unavailable")
	if !ok {
		t.Fatal("ParseLine failed")
	}
	if got.Kind != KindFileUnavailable || got.Priority != "low" || got.Bytes != 0 || got.Detail != "" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestParseEntries_SkipsMalformed(t *testing.T) {
	content := "not a timestamp  priority=low  event=played\n" +
		"2026-02-22T10:00:00Z  priority=low  event=exploded\n" +
		"\n" +
		"2026-02-22T10:00:01Z  run=a  priority=medium  event=played\r\n" +
		"2026-02-22T10:00:02Z\n"

	entries := ParseEntries(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Priority != "medium" || entries[0].Kind != KindPlayed {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestParseKind(t *testing.T) {
	for k := KindSynthesized; k <= KindStopped; k++ {
		got, ok := ParseKind(KindString(k))
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", KindString(k), got, ok)
		}
	}
	if _, ok := ParseKind("other"); ok {
		t.Error("ParseKind(other) should fail")
	}
}

func TestExtractTimestamp(t *testing.T) {
	ts, ok := ExtractTimestamp("2026-02-22T10:00:00+01:00  run=x")
	if !ok {
		t.Fatal("expected ok")
	}
	if ts.Hour() != 10 {
		t.Errorf("hour = %d", ts.Hour())
	}
	if _, ok := ExtractTimestamp("garbage"); ok {
		t.Error("expected failure without separator")
	}
}

func TestExtractQuoted(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"hello"  more`, "hello"},
		{`"a \"b\" c"`, `a "b" c`},
		{`unquoted`, ""},
		{`"unterminated`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := extractQuoted(tt.in); got != tt.want {
			t.Errorf("extractQuoted(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
