package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "alerttone.log"))
}

func TestFileStoreRecordAndEntries(t *testing.T) {
	s := tempStore(t)
	now := time.Now().Truncate(time.Second)

	if err := s.Record(Event{Time: now, RunID: "r1", Priority: "high", Kind: KindPlayed, Bytes: 921600}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(Event{Time: now, RunID: "r1", Priority: "low", Kind: KindFileUnavailable, Detail: "test.raw"}); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindPlayed || entries[0].Bytes != 921600 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Detail != "test.raw" {
		t.Errorf("detail = %q, want test.raw", entries[1].Detail)
	}
}

func TestFileStoreRecordFillsTime(t *testing.T) {
	s := tempStore(t)
	if err := s.Record(Event{Priority: "medium", Kind: KindPlayed}); err != nil {
		t.Fatal(err)
	}
	entries, _ := s.Entries(1)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry today, got %d", len(entries))
	}
}

func TestFileStoreEntriesMissingFile(t *testing.T) {
	entries, err := tempStore(t).Entries(0)
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %v", entries)
	}
}

func TestFileStoreCounts(t *testing.T) {
	s := tempStore(t)
	now := time.Now()
	for _, e := range []Event{
		{Time: now, Priority: "low", Kind: KindPlayed},
		{Time: now, Priority: "high", Kind: KindPlayed},
		{Time: now, Priority: "high", Kind: KindPlayed},
		{Time: now, Priority: "high", Kind: KindSynthesized},
	} {
		if err := s.Record(e); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.Counts(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []Count{
		{Priority: "high", Kind: KindSynthesized, N: 1},
		{Priority: "high", Kind: KindPlayed, N: 2},
		{Priority: "low", Kind: KindPlayed, N: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestFileStoreClean(t *testing.T) {
	s := tempStore(t)
	old := time.Now().AddDate(0, 0, -10)
	if err := s.Record(Event{Time: old, Priority: "low", Kind: KindPlayed}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(Event{Time: time.Now(), Priority: "high", Kind: KindPlayed}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Clean(3)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	data, _ := os.ReadFile(s.Path())
	if strings.Contains(string(data), "priority=low") || !strings.Contains(string(data), "priority=high") {
		t.Errorf("unexpected log after clean:\n%s", data)
	}
}

func TestFileStoreCleanRemovesEmptyLog(t *testing.T) {
	s := tempStore(t)
	if err := s.Record(Event{Time: time.Now().AddDate(0, 0, -30), Priority: "low", Kind: KindPlayed}); err != nil {
		t.Fatal(err)
	}
	removed, err := s.Clean(1)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("expected log file to be removed")
	}
}

func TestFileStoreClear(t *testing.T) {
	s := tempStore(t)
	s.Record(Event{Priority: "low", Kind: KindPlayed})
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	entries, _ := s.Entries(0)
	if len(entries) != 0 {
		t.Errorf("expected no entries after clear, got %d", len(entries))
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "events.log"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(.log) = %T, want *FileStore", s)
	}
	s.Close()

	s, err = Open(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(.db) = %T, want *SQLiteStore", s)
	}
}
