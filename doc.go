// Package geomstore persists the geometry of OpenStreetMap elements in an
// embedded SQLite database and answers the queries a map editing client needs:
// exact lookup by element, bounding box search, and cleanup of geometries
// that no quest references anymore.
//
// # Data model
//
// Every element (node, way or relation) has at most one [Geometry]: a
// [Point], [Polylines] or [Polygons]. A row stores the center, the bounding
// box derived from the coordinates, and the coordinate payload of the
// variant. Polygon payloads take precedence over polyline payloads when a row
// is decoded; a row without payload is a point.
//
// # Usage
//
//	e, err := geomstore.New("geometry.db", geomstore.WithLogger(log))
//	if err != nil { ... }
//	defer e.Close()
//
//	err = e.Put(geomstore.Node(100), geomstore.Point{Center: geomstore.LatLon{Latitude: 52.5, Longitude: 13.4}})
//	keys, err := e.GetAllKeys(geomstore.BoundingBox{MinLat: 52, MinLon: 13, MaxLat: 53, MaxLon: 14})
//
// # Cleanup
//
// [Engine.DeleteUnreferenced] removes every geometry whose element is not
// referenced by any configured [ReferenceSource]. By default these are the
// active quest and undo quest reference tables kept in the same database, see
// [Engine.ActiveQuests] and [Engine.UndoQuests].
//
// # Import
//
// [Engine.ImportGeoJSON] reads GeoJSON feature collections whose feature ids
// name OSM elements ("node/1", "way/2"). Files are decoded by a bounded worker
// pool and each file is committed in one transaction.
package geomstore
