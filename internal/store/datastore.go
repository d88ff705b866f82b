package store

// GeometryWriter is the write side used by the import pipeline. Both Store
// (direct SQLite) and Batch (in-memory buffering for parallel imports)
// implement it.
type GeometryWriter interface {
	PutGeometry(e Entry) error
}

// Compile-time check: *Store satisfies GeometryWriter.
var _ GeometryWriter = (*Store)(nil)
