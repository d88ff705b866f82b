package geomstore

import (
	"fmt"
	"runtime"

	"github.com/jward/geomstore/internal/geometry"
	"github.com/jward/geomstore/internal/store"
	"go.uber.org/zap"
)

// Engine is the process wide handle on a geometry database. It is opened once
// with New, shared by everything that needs element geometries, and closed
// once with Close.
type Engine struct {
	store      *store.Store
	log        *zap.Logger
	sources    []store.ReferenceSource
	serializer geometry.Serializer
	workers    int

	// customSources is set when WithReferenceSources replaced the defaults.
	customSources bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithReferenceSources replaces the reference sources consulted by
// DeleteUnreferenced. By default the active quest and undo quest tables of
// the database are used.
func WithReferenceSources(sources ...ReferenceSource) Option {
	return func(e *Engine) {
		e.sources = sources
		e.customSources = true
	}
}

// WithSerializer replaces the WKB coordinate payload serializer.
func WithSerializer(s Serializer) Option {
	return func(e *Engine) {
		e.serializer = s
	}
}

// WithWorkers bounds the number of files ImportGeoJSON decodes concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.workers = n
		}
	}
}

// New opens (creating if needed) the SQLite database at dbPath and migrates
// its schema.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:     zap.NewNop(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}

	s, err := store.NewStore(dbPath, store.WithCodec(geometry.NewCodec(e.serializer)))
	if err != nil {
		return nil, fmt.Errorf("geomstore: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("geomstore: migrate: %w", err)
	}
	e.store = s
	if !e.customSources {
		e.sources = []store.ReferenceSource{s.ActiveQuestRefs(), s.UndoQuestRefs()}
	}

	e.log.Debug("opened geometry store", zap.String("path", dbPath), zap.Int("workers", e.workers))
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Put stores g for key, replacing whatever was stored before.
func (e *Engine) Put(key ElementKey, g Geometry) error {
	if err := e.store.PutGeometry(store.Entry{Key: key, Geometry: g}); err != nil {
		return err
	}
	e.log.Debug("put geometry", zap.Stringer("key", key), zap.Stringer("kind", g.Kind()))
	return nil
}

// PutAll stores all entries in one transaction. Either every entry is
// stored or none is.
func (e *Engine) PutAll(entries []Entry) error {
	if err := e.store.PutGeometries(entries); err != nil {
		return err
	}
	e.log.Debug("put geometries", zap.Int("count", len(entries)))
	return nil
}

// Get returns the geometry of key, or nil if none is stored.
func (e *Engine) Get(key ElementKey) (Geometry, error) {
	return e.store.Geometry(key)
}

// GetAllKeys returns the keys of all geometries whose bounding box
// intersects bbox. Touching edges count as intersecting.
func (e *Engine) GetAllKeys(bbox BoundingBox) ([]ElementKey, error) {
	return e.store.GeometryKeysIn(bbox)
}

// Delete removes the geometry of key. Missing keys are ignored.
func (e *Engine) Delete(key ElementKey) error {
	if err := e.store.DeleteGeometry(key); err != nil {
		return err
	}
	e.log.Debug("deleted geometry", zap.Stringer("key", key))
	return nil
}

// DeleteAll removes the geometries of keys in one transaction.
func (e *Engine) DeleteAll(keys []ElementKey) error {
	if err := e.store.DeleteGeometries(keys); err != nil {
		return err
	}
	e.log.Debug("deleted geometries", zap.Int("count", len(keys)))
	return nil
}

// DeleteUnreferenced removes every geometry whose element no reference
// source mentions and returns how many were removed.
func (e *Engine) DeleteUnreferenced() (int64, error) {
	n, err := e.store.DeleteUnreferenced(e.sources...)
	if err != nil {
		return 0, err
	}
	e.log.Info("deleted unreferenced geometries", zap.Int64("count", n), zap.Int("sources", len(e.sources)))
	return n, nil
}

// Count returns the number of stored geometries.
func (e *Engine) Count() (int, error) {
	return e.store.CountGeometries()
}

// ActiveQuests returns the reference table of quests currently shown.
func (e *Engine) ActiveQuests() *RefTable {
	return e.store.ActiveQuestRefs()
}

// UndoQuests returns the reference table of answered quests that can still be
// undone.
func (e *Engine) UndoQuests() *RefTable {
	return e.store.UndoQuestRefs()
}
