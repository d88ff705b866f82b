package store

import "sync"

// Batch buffers geometry entries in memory until Store.CommitBatch writes
// them in one transaction. It implements GeometryWriter so import workers can
// write to it without knowing whether they're hitting SQLite or a buffer.
//
// Thread safety: the mutex protects the Entries slice.
type Batch struct {
	mu sync.Mutex

	Entries []Entry
}

// Compile-time check: *Batch satisfies GeometryWriter.
var _ GeometryWriter = (*Batch)(nil)

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// PutGeometry appends e. A later entry for the same key wins on commit.
func (b *Batch) PutGeometry(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Entries = append(b.Entries, e)
	return nil
}

// Len returns the number of buffered entries.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Entries)
}
