package store

import (
	"database/sql"
	"fmt"

	"github.com/jward/geomstore/internal/element"
	"github.com/paulmach/osm"
)

// nullBlob binds a nil slice as SQL NULL.
func nullBlob(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

// keyArgs returns the (element_type, element_id) arguments for k.
func keyArgs(k element.Key) []any {
	return []any{string(k.Type), k.ID}
}

// scanKeys reads (element_type, element_id) rows.
func scanKeys(rows *sql.Rows) ([]element.Key, error) {
	defer rows.Close()
	var keys []element.Key
	for rows.Next() {
		var typ string
		var id int64
		if err := rows.Scan(&typ, &id); err != nil {
			return nil, fmt.Errorf("scan element key: %w", err)
		}
		keys = append(keys, element.Key{Type: osm.Type(typ), ID: id})
	}
	return keys, rows.Err()
}
