package store

import "fmt"

// PutGeometries inserts or replaces all entries within a single transaction.
// If any entry fails to encode or insert, nothing of the batch is kept.
func (s *Store) PutGeometries(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("put geometries: begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := putGeometryTx(tx, s.codec, e); err != nil {
			return fmt.Errorf("put geometries: %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// CommitBatch writes everything buffered in batch within a single transaction.
func (s *Store) CommitBatch(batch *Batch) error {
	batch.mu.Lock()
	entries := batch.Entries
	batch.mu.Unlock()

	if err := s.PutGeometries(entries); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
