package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Mavwarf/alerttone/internal/paths"
)

// FileStore implements Store using a flat log file, one event per line.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore that reads and writes the given log file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Open returns the store for path: a text log for .log and .txt files, a
// SQLite database otherwise.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".log", ".txt":
		return NewFileStore(path), nil
	default:
		return NewSQLiteStore(path)
	}
}

// openLog opens (or creates) the log file for appending, creating the
// parent directory if needed.
func (f *FileStore) openLog() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), paths.DirPerm); err != nil {
		return nil, err
	}
	return os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, paths.FilePerm)
}

func (f *FileStore) Record(e Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	file, err := f.openLog()
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintln(file, FormatLine(e))
	return err
}

func (f *FileStore) read() ([]Event, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return ParseEntries(string(data)), nil
}

func (f *FileStore) Entries(days int) ([]Event, error) {
	events, err := f.read()
	if err != nil || days <= 0 {
		return events, err
	}
	cutoff := DayCutoff(days)
	var filtered []Event
	for _, e := range events {
		if !e.Time.Before(cutoff) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (f *FileStore) Counts(days int) ([]Count, error) {
	events, err := f.Entries(days)
	if err != nil {
		return nil, err
	}
	type key struct {
		priority string
		kind     Kind
	}
	tally := map[key]int{}
	for _, e := range events {
		tally[key{e.Priority, e.Kind}]++
	}
	counts := make([]Count, 0, len(tally))
	for k, n := range tally {
		counts = append(counts, Count{Priority: k.priority, Kind: k.kind, N: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Priority != counts[j].Priority {
			return counts[i].Priority < counts[j].Priority
		}
		return counts[i].Kind < counts[j].Kind
	})
	return counts, nil
}

// Clean rewrites the log keeping only the last days days of events. A log
// left empty is removed.
func (f *FileStore) Clean(days int) (int, error) {
	events, err := f.read()
	if err != nil || len(events) == 0 {
		return 0, err
	}

	cutoff := DayCutoff(days)
	var b strings.Builder
	kept := 0
	for _, e := range events {
		if e.Time.Before(cutoff) {
			continue
		}
		b.WriteString(FormatLine(e))
		b.WriteByte('\n')
		kept++
	}
	removed := len(events) - kept
	if removed == 0 {
		return 0, nil
	}

	if kept == 0 {
		_ = os.Remove(f.path)
		return removed, nil
	}
	if err := paths.AtomicWrite(f.path, []byte(b.String())); err != nil {
		return 0, err
	}
	return removed, nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) Path() string {
	return f.path
}

// Close is a no-op; the file is opened per write.
func (f *FileStore) Close() error { return nil }
