package geomstore

import (
	"github.com/jward/geomstore/internal/element"
	"github.com/jward/geomstore/internal/geometry"
	"github.com/jward/geomstore/internal/store"
)

// Public type aliases for the internal element, geometry and store types.
// These are Go type aliases (=), identical to the internal types at compile
// time, so no conversion is needed.

type ElementKey = element.Key
type LatLon = geometry.LatLon
type BoundingBox = geometry.BoundingBox
type Geometry = geometry.Geometry
type Point = geometry.Point
type Polylines = geometry.Polylines
type Polygons = geometry.Polygons
type Serializer = geometry.Serializer
type Entry = store.Entry
type ReferenceSource = store.ReferenceSource
type ReferenceFunc = store.ReferenceFunc
type RefTable = store.RefTable
type Store = store.Store

// Element key constructors.
var (
	Node     = element.Node
	Way      = element.Way
	Relation = element.Relation
	ParseKey = element.ParseKey
)
