package store

import (
	"github.com/jward/geomstore/internal/element"
	"github.com/jward/geomstore/internal/geometry"
)

// Entry is the unit of storage: at most one geometry per element key.
type Entry struct {
	Key      element.Key
	Geometry geometry.Geometry
}
