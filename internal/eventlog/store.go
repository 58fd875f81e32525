package eventlog

// Store abstracts event log storage.
type Store interface {
	// Write
	Record(e Event) error

	// Read
	Entries(days int) ([]Event, error) // 0 = all
	Counts(days int) ([]Count, error)  // per priority/kind totals

	// Maintenance
	Clean(days int) (int, error) // remove old entries, return removed count
	Clear() error                // delete all data

	// Metadata
	Path() string
	Close() error
}

// Count is the number of events of one kind for one priority.
type Count struct {
	Priority string
	Kind     Kind
	N        int
}
