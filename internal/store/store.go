package store

import (
	"database/sql"
	"fmt"

	"github.com/jward/geomstore/internal/geometry"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for element geometries and the quest
// reference tables consulted when cleaning them up.
type Store struct {
	db    *sql.DB
	codec *geometry.Codec
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCodec replaces the default WKB-backed geometry codec.
func WithCodec(c *geometry.Codec) StoreOption {
	return func(s *Store) {
		s.codec = c
	}
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string, opts ...StoreOption) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		s.codec = geometry.NewCodec(nil)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS element_geometry (
  element_type      TEXT NOT NULL CHECK (element_type IN ('node', 'way', 'relation')),
  element_id        INTEGER NOT NULL,
  center_latitude   REAL NOT NULL,
  center_longitude  REAL NOT NULL,
  min_latitude      REAL NOT NULL,
  min_longitude     REAL NOT NULL,
  max_latitude      REAL NOT NULL,
  max_longitude     REAL NOT NULL,
  geometry_polylines BLOB,
  geometry_polygons  BLOB,
  PRIMARY KEY (element_type, element_id)
);

-- Quest reference tables

CREATE TABLE IF NOT EXISTS active_quest_refs (
  quest_type      TEXT NOT NULL,
  element_type    TEXT NOT NULL,
  element_id      INTEGER NOT NULL,
  PRIMARY KEY (quest_type, element_type, element_id)
);

CREATE TABLE IF NOT EXISTS undo_quest_refs (
  quest_type      TEXT NOT NULL,
  element_type    TEXT NOT NULL,
  element_id      INTEGER NOT NULL,
  PRIMARY KEY (quest_type, element_type, element_id)
);

-- Indexes

CREATE INDEX IF NOT EXISTS idx_element_geometry_min_lat ON element_geometry(min_latitude);
CREATE INDEX IF NOT EXISTS idx_element_geometry_max_lat ON element_geometry(max_latitude);
CREATE INDEX IF NOT EXISTS idx_element_geometry_min_lon ON element_geometry(min_longitude);
CREATE INDEX IF NOT EXISTS idx_element_geometry_max_lon ON element_geometry(max_longitude);
CREATE INDEX IF NOT EXISTS idx_active_quest_refs_element ON active_quest_refs(element_type, element_id);
CREATE INDEX IF NOT EXISTS idx_undo_quest_refs_element ON undo_quest_refs(element_type, element_id);
`
