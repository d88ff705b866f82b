package store

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jward/geomstore/internal/element"
	"github.com/jward/geomstore/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ll(lat, lon float64) geometry.LatLon {
	return geometry.LatLon{Latitude: lat, Longitude: lon}
}

func pointAt(lat, lon float64) geometry.Geometry {
	return geometry.Point{Center: ll(lat, lon)}
}

// putTestGeometry stores a point geometry under key.
func putTestGeometry(t *testing.T, s *Store, key element.Key, lat, lon float64) {
	t.Helper()
	require.NoError(t, s.PutGeometry(Entry{Key: key, Geometry: pointAt(lat, lon)}))
}

func countRows(t *testing.T, s *Store) int {
	t.Helper()
	n, err := s.CountGeometries()
	require.NoError(t, err)
	return n
}

// failingSerializer fails once more than `after` payloads have been marshalled.
type failingSerializer struct {
	after int32
	calls atomic.Int32
}

var errSerializer = errors.New("serializer failed")

func (f *failingSerializer) Marshal(lines [][]geometry.LatLon) ([]byte, error) {
	if f.calls.Add(1) > f.after {
		return nil, errSerializer
	}
	return geometry.WKBSerializer{}.Marshal(lines)
}

func (f *failingSerializer) Unmarshal(data []byte) ([][]geometry.LatLon, error) {
	return geometry.WKBSerializer{}.Unmarshal(data)
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"element_geometry", "active_quest_refs", "undo_quest_refs"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestMigrate_BoundIndexes(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	rows, err := s.DB().Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='element_geometry'")
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, names, "idx_element_geometry_min_lat")
	assert.Contains(t, names, "idx_element_geometry_max_lon")
}

// =============================================================================
// Put / Get
// =============================================================================

func TestGeometry_PutAndGet(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	samples := map[element.Key]geometry.Geometry{
		element.Node(1): pointAt(52.5, 13.4),
		element.Way(2): geometry.Polylines{
			Center: ll(0.5, 0.5),
			Lines:  [][]geometry.LatLon{{ll(0, 0), ll(1, 1)}, {ll(2, 2), ll(3, 3)}},
		},
		element.Relation(3): geometry.Polygons{
			Center: ll(0.5, 0.5),
			Rings:  [][]geometry.LatLon{{ll(0, 0), ll(0, 1), ll(1, 1), ll(1, 0), ll(0, 0)}},
		},
	}
	for k, g := range samples {
		require.NoError(t, s.PutGeometry(Entry{Key: k, Geometry: g}))
	}
	for k, want := range samples {
		got, err := s.Geometry(k)
		require.NoError(t, err)
		assert.Equal(t, want, got, k.String())
	}
	assert.Equal(t, 3, countRows(t, s))
}

func TestGeometry_Miss(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	g, err := s.Geometry(element.Node(404))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestGeometry_SameIDDifferentTypes(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(7), 1, 1)
	putTestGeometry(t, s, element.Way(7), 2, 2)

	n, err := s.Geometry(element.Node(7))
	require.NoError(t, err)
	assert.Equal(t, pointAt(1, 1), n)

	w, err := s.Geometry(element.Way(7))
	require.NoError(t, err)
	assert.Equal(t, pointAt(2, 2), w)
}

func TestGeometry_PutReplacesVariant(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	key := element.Way(10)

	lines := geometry.Polylines{Center: ll(0, 1), Lines: [][]geometry.LatLon{{ll(0, 0), ll(0, 2)}}}
	require.NoError(t, s.PutGeometry(Entry{Key: key, Geometry: lines}))
	putTestGeometry(t, s, key, 5, 6)

	g, err := s.Geometry(key)
	require.NoError(t, err)
	assert.Equal(t, pointAt(5, 6), g)
	assert.Equal(t, 1, countRows(t, s))

	var polylines, polygons []byte
	require.NoError(t, s.DB().QueryRow(
		"SELECT geometry_polylines, geometry_polygons FROM element_geometry WHERE element_type='way' AND element_id=10",
	).Scan(&polylines, &polygons))
	assert.Nil(t, polylines, "old polyline payload must not survive replacement")
	assert.Nil(t, polygons)
}

func TestGeometry_StoresDerivedBounds(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ring := geometry.Polygons{
		Center: ll(0.5, 0.5),
		Rings:  [][]geometry.LatLon{{ll(0, 0), ll(0, 1), ll(1, 1), ll(1, 0)}},
	}
	require.NoError(t, s.PutGeometry(Entry{Key: element.Way(1), Geometry: ring}))

	var minLat, minLon, maxLat, maxLon float64
	require.NoError(t, s.DB().QueryRow(
		"SELECT min_latitude, min_longitude, max_latitude, max_longitude FROM element_geometry",
	).Scan(&minLat, &minLon, &maxLat, &maxLon))
	assert.Equal(t, []float64{0, 0, 1, 1}, []float64{minLat, minLon, maxLat, maxLon})
}

func TestGeometry_RejectsInvalidType(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.PutGeometry(Entry{Key: element.Key{Type: "changeset", ID: 1}, Geometry: pointAt(0, 0)})
	assert.Error(t, err)
	assert.Equal(t, 0, countRows(t, s))
}

func TestGeometry_RejectsNilPointerGeometry(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.PutGeometry(Entry{Key: element.Way(1), Geometry: (*geometry.Polylines)(nil)})
	assert.ErrorContains(t, err, "nil geometry")
	assert.Equal(t, 0, countRows(t, s))
}

// =============================================================================
// Bounding box query
// =============================================================================

func TestGeometryKeysIn_PointInsideAndOutside(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(100), 52.5, 13.4)

	keys, err := s.GeometryKeysIn(geometry.BoundingBox{MinLat: 52, MinLon: 13, MaxLat: 53, MaxLon: 14})
	require.NoError(t, err)
	assert.Equal(t, []element.Key{element.Node(100)}, keys)

	keys, err = s.GeometryKeysIn(geometry.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 1})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGeometryKeysIn_EdgesAndOverlap(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// Polyline spanning lon 0..2 at lat 0..1.
	require.NoError(t, s.PutGeometry(Entry{Key: element.Way(1), Geometry: geometry.Polylines{
		Center: ll(0.5, 1),
		Lines:  [][]geometry.LatLon{{ll(0, 0), ll(1, 2)}},
	}}))

	tests := map[string]struct {
		bbox geometry.BoundingBox
		hit  bool
	}{
		"contains":       {geometry.BoundingBox{MinLat: -1, MinLon: -1, MaxLat: 3, MaxLon: 3}, true},
		"inside":         {geometry.BoundingBox{MinLat: 0.2, MinLon: 0.5, MaxLat: 0.4, MaxLon: 0.6}, true},
		"touching edge":  {geometry.BoundingBox{MinLat: 1, MinLon: 0, MaxLat: 2, MaxLon: 1}, true},
		"touching point": {geometry.BoundingBox{MinLat: 1, MinLon: 2, MaxLat: 2, MaxLon: 3}, true},
		"east":           {geometry.BoundingBox{MinLat: 0, MinLon: 2.001, MaxLat: 1, MaxLon: 3}, false},
		"south":          {geometry.BoundingBox{MinLat: -2, MinLon: 0, MaxLat: -0.001, MaxLon: 2}, false},
	}
	for name, tt := range tests {
		keys, err := s.GeometryKeysIn(tt.bbox)
		require.NoError(t, err, name)
		if tt.hit {
			assert.Equal(t, []element.Key{element.Way(1)}, keys, name)
		} else {
			assert.Empty(t, keys, name)
		}
	}
}

func TestAllGeometryKeys(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)
	putTestGeometry(t, s, element.Way(2), 0, 0)

	keys, err := s.AllGeometryKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []element.Key{element.Node(1), element.Way(2)}, keys)
}

// =============================================================================
// Delete
// =============================================================================

func TestDeleteGeometry(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)

	require.NoError(t, s.DeleteGeometry(element.Node(1)))
	g, err := s.Geometry(element.Node(1))
	require.NoError(t, err)
	assert.Nil(t, g)

	// Deleting again is a no-op.
	require.NoError(t, s.DeleteGeometry(element.Node(1)))
}

func TestDeleteGeometries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)
	putTestGeometry(t, s, element.Node(2), 0, 0)
	putTestGeometry(t, s, element.Node(3), 0, 0)

	require.NoError(t, s.DeleteGeometries([]element.Key{element.Node(1), element.Node(3), element.Way(99)}))
	keys, err := s.AllGeometryKeys()
	require.NoError(t, err)
	assert.Equal(t, []element.Key{element.Node(2)}, keys)

	require.NoError(t, s.DeleteGeometries(nil))
}

func TestDeleteGeometries_FailureRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)
	putTestGeometry(t, s, element.Node(2), 0, 0)

	_, err := s.DB().Exec(`CREATE TRIGGER fail_delete BEFORE DELETE ON element_geometry
		WHEN old.element_id = 2 BEGIN SELECT RAISE(ABORT, 'boom'); END`)
	require.NoError(t, err)

	err = s.DeleteGeometries([]element.Key{element.Node(1), element.Node(2)})
	require.Error(t, err)
	assert.Equal(t, 2, countRows(t, s), "node/1 must survive the failed batch")
}

// =============================================================================
// Batch writes
// =============================================================================

func tenLineEntries() []Entry {
	entries := make([]Entry, 10)
	for i := range entries {
		entries[i] = Entry{Key: element.Way(int64(i + 1)), Geometry: geometry.Polylines{
			Center: ll(0, 0),
			Lines:  [][]geometry.LatLon{{ll(0, 0), ll(float64(i), 1)}},
		}}
	}
	return entries
}

func TestPutGeometries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.PutGeometries(tenLineEntries()))
	assert.Equal(t, 10, countRows(t, s))
	require.NoError(t, s.PutGeometries(nil))
}

func TestPutGeometries_FailureOnLastEntryRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t, WithCodec(geometry.NewCodec(&failingSerializer{after: 9})))

	err := s.PutGeometries(tenLineEntries())
	require.Error(t, err)
	assert.ErrorIs(t, err, errSerializer)
	assert.Equal(t, 0, countRows(t, s))
}

func TestPutGeometries_ConstraintFailureRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 9, 9)

	entries := []Entry{
		{Key: element.Node(1), Geometry: pointAt(1, 1)},
		{Key: element.Node(2), Geometry: pointAt(2, 2)},
		{Key: element.Key{Type: "bogus", ID: 3}, Geometry: pointAt(3, 3)},
	}
	require.Error(t, s.PutGeometries(entries))

	assert.Equal(t, 1, countRows(t, s))
	g, err := s.Geometry(element.Node(1))
	require.NoError(t, err)
	assert.Equal(t, pointAt(9, 9), g, "prior state must be intact")
}

// =============================================================================
// Reference tables & cleanup
// =============================================================================

func TestRefTable_AddRemove(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	refs := s.ActiveQuestRefs()
	assert.Equal(t, ActiveQuestRefsTable, refs.Name())

	require.NoError(t, refs.Add("AddOpeningHours", element.Node(1)))
	require.NoError(t, refs.Add("AddOpeningHours", element.Node(1)))
	require.NoError(t, refs.Add("AddRoadSurface", element.Node(1)))
	require.NoError(t, refs.Add("AddRoadSurface", element.Way(2)))

	keys, err := refs.ReferencedKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []element.Key{element.Node(1), element.Way(2)}, keys)

	require.NoError(t, refs.Remove("AddRoadSurface", element.Way(2)))
	require.NoError(t, refs.Remove("AddOpeningHours", element.Node(1)))
	keys, err = refs.ReferencedKeys()
	require.NoError(t, err)
	assert.Equal(t, []element.Key{element.Node(1)}, keys, "still referenced by AddRoadSurface")

	require.NoError(t, refs.RemoveAll(element.Node(1)))
	keys, err = refs.ReferencedKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRefTable_RejectsInvalidKey(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	assert.Error(t, s.UndoQuestRefs().Add("q", element.Key{Type: "area", ID: 1}))
}

func TestDeleteUnreferenced_SetSubtraction(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	stored := []element.Key{
		element.Node(1), element.Node(2), element.Way(1), element.Way(3), element.Relation(1), element.Relation(2),
	}
	for _, k := range stored {
		putTestGeometry(t, s, k, 0, 0)
	}

	active := s.ActiveQuestRefs()
	require.NoError(t, active.Add("q", element.Node(1)))
	require.NoError(t, active.Add("q", element.Way(3)))
	require.NoError(t, active.Add("q", element.Way(404))) // referenced but not stored

	undo := ReferenceFunc(func() ([]element.Key, error) {
		return []element.Key{element.Way(3), element.Relation(2)}, nil
	})

	n, err := s.DeleteUnreferenced(active, undo)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	keys, err := s.AllGeometryKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []element.Key{element.Node(1), element.Way(3), element.Relation(2)}, keys)

	// Same id under another type is a different key.
	assert.NotContains(t, keys, element.Node(2))
}

func TestDeleteUnreferenced_NoSourcesDeletesAll(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)
	putTestGeometry(t, s, element.Node(2), 0, 0)

	n, err := s.DeleteUnreferenced()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 0, countRows(t, s))
}

func TestDeleteUnreferenced_Repeatable(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)
	putTestGeometry(t, s, element.Node(2), 0, 0)
	require.NoError(t, s.UndoQuestRefs().Add("q", element.Node(2)))

	n, err := s.DeleteUnreferenced(s.ActiveQuestRefs(), s.UndoQuestRefs())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteUnreferenced(s.ActiveQuestRefs(), s.UndoQuestRefs())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteUnreferenced_SourceErrorKeepsRows(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	putTestGeometry(t, s, element.Node(1), 0, 0)

	boom := errors.New("source unavailable")
	_, err := s.DeleteUnreferenced(ReferenceFunc(func() ([]element.Key, error) { return nil, boom }))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countRows(t, s))
}
