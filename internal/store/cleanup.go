package store

import (
	"database/sql"
	"fmt"
)

// DeleteUnreferenced removes every geometry whose key is referenced by none of
// sources and returns the number of rows removed. With no sources every
// geometry is unreferenced.
//
// Referenced keys are collected into a temporary table on the transaction's
// connection so the delete can compare (element_type, element_id) pairs
// directly. Reference tables of this store are copied in SQL; other sources
// are materialised through ReferencedKeys.
func (s *Store) DeleteUnreferenced(sources ...ReferenceSource) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("delete unreferenced: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS referenced_elements (
		element_type TEXT NOT NULL,
		element_id   INTEGER NOT NULL,
		PRIMARY KEY (element_type, element_id)
	)`); err != nil {
		return 0, fmt.Errorf("delete unreferenced: create temp table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM temp.referenced_elements"); err != nil {
		return 0, fmt.Errorf("delete unreferenced: clear temp table: %w", err)
	}

	for _, src := range sources {
		if err := s.loadReferences(tx, src); err != nil {
			return 0, fmt.Errorf("delete unreferenced: %w", err)
		}
	}

	res, err := tx.Exec(`DELETE FROM element_geometry
		WHERE (element_type, element_id) NOT IN (
			SELECT element_type, element_id FROM temp.referenced_elements
		)`)
	if err != nil {
		return 0, fmt.Errorf("delete unreferenced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete unreferenced: rows affected: %w", err)
	}

	if _, err := tx.Exec("DROP TABLE temp.referenced_elements"); err != nil {
		return 0, fmt.Errorf("delete unreferenced: drop temp table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete unreferenced: commit: %w", err)
	}
	return n, nil
}

func (s *Store) loadReferences(tx *sql.Tx, src ReferenceSource) error {
	if t, ok := src.(*RefTable); ok && t.store == s {
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO temp.referenced_elements (element_type, element_id) " +
				"SELECT element_type, element_id FROM " + t.name,
		)
		if err != nil {
			return fmt.Errorf("copy %s: %w", t.name, err)
		}
		return nil
	}

	keys, err := src.ReferencedKeys()
	if err != nil {
		return fmt.Errorf("referenced keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO temp.referenced_elements (element_type, element_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare reference insert: %w", err)
	}
	defer stmt.Close()
	for _, k := range keys {
		if _, err := stmt.Exec(keyArgs(k)...); err != nil {
			return fmt.Errorf("insert reference %s: %w", k, err)
		}
	}
	return nil
}
