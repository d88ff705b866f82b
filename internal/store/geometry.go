package store

import (
	"database/sql"
	"fmt"

	"github.com/jward/geomstore/internal/element"
	"github.com/jward/geomstore/internal/geometry"
)

// --- Element geometry operations ---

// PutGeometry inserts the entry or fully replaces the row stored for its key.
func (s *Store) PutGeometry(e Entry) error {
	if err := putGeometryTx(s.db, s.codec, e); err != nil {
		return fmt.Errorf("put geometry %s: %w", e.Key, err)
	}
	return nil
}

// Geometry returns the geometry stored for key, or nil if there is none.
func (s *Store) Geometry(key element.Key) (geometry.Geometry, error) {
	var row geometry.Row
	err := s.db.QueryRow(
		`SELECT center_latitude, center_longitude, min_latitude, min_longitude,
			max_latitude, max_longitude, geometry_polylines, geometry_polygons
		 FROM element_geometry WHERE element_type = ? AND element_id = ?`,
		keyArgs(key)...,
	).Scan(
		&row.CenterLat, &row.CenterLon, &row.MinLat, &row.MinLon,
		&row.MaxLat, &row.MaxLon, &row.Polylines, &row.Polygons,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("geometry %s: %w", key, err)
	}
	g, err := s.codec.Decode(row)
	if err != nil {
		return nil, fmt.Errorf("geometry %s: %w", key, err)
	}
	return g, nil
}

// GeometryKeysIn returns the keys of all geometries whose bounding box
// intersects bbox, edges and corners included. The order is unspecified.
func (s *Store) GeometryKeysIn(bbox geometry.BoundingBox) ([]element.Key, error) {
	rows, err := s.db.Query(
		`SELECT element_type, element_id FROM element_geometry
		 WHERE max_longitude >= ? AND max_latitude >= ? AND min_longitude <= ? AND min_latitude <= ?`,
		bbox.MinLon, bbox.MinLat, bbox.MaxLon, bbox.MaxLat,
	)
	if err != nil {
		return nil, fmt.Errorf("geometry keys in bbox: %w", err)
	}
	return scanKeys(rows)
}

// AllGeometryKeys returns the key of every stored geometry.
func (s *Store) AllGeometryKeys() ([]element.Key, error) {
	rows, err := s.db.Query("SELECT element_type, element_id FROM element_geometry")
	if err != nil {
		return nil, fmt.Errorf("all geometry keys: %w", err)
	}
	return scanKeys(rows)
}

// CountGeometries returns the number of stored geometries.
func (s *Store) CountGeometries() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM element_geometry").Scan(&n); err != nil {
		return 0, fmt.Errorf("count geometries: %w", err)
	}
	return n, nil
}

// DeleteGeometry removes the row for key. Deleting a missing key is not an error.
func (s *Store) DeleteGeometry(key element.Key) error {
	if err := deleteGeometryTx(s.db, key); err != nil {
		return fmt.Errorf("delete geometry %s: %w", key, err)
	}
	return nil
}

// DeleteGeometries removes the rows for keys in a single transaction.
func (s *Store) DeleteGeometries(keys []element.Key) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete geometries: begin: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if err := deleteGeometryTx(tx, key); err != nil {
			return fmt.Errorf("delete geometries: %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putGeometryTx(ex execer, codec *geometry.Codec, e Entry) error {
	row, err := codec.Encode(e.Geometry)
	if err != nil {
		return err
	}
	_, err = ex.Exec(
		`INSERT OR REPLACE INTO element_geometry (element_type, element_id,
			center_latitude, center_longitude, min_latitude, min_longitude,
			max_latitude, max_longitude, geometry_polylines, geometry_polygons)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Key.Type), e.Key.ID,
		row.CenterLat, row.CenterLon, row.MinLat, row.MinLon,
		row.MaxLat, row.MaxLon, nullBlob(row.Polylines), nullBlob(row.Polygons),
	)
	return err
}

func deleteGeometryTx(ex execer, key element.Key) error {
	_, err := ex.Exec(
		"DELETE FROM element_geometry WHERE element_type = ? AND element_id = ?",
		keyArgs(key)...,
	)
	return err
}
