package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// ErrUnsupportedGeometry is returned by FromOrb for geometry types that have no
// element geometry counterpart, such as MultiPoint or Collection.
var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// FromOrb converts an orb geometry into an element geometry. Lines become
// Polylines, areas become Polygons with one entry per ring. The center is the
// planar centroid.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return Point{Center: latLonFromPoint(v)}, nil
	case orb.LineString:
		return polylinesFromOrb(v, orb.MultiLineString{v})
	case orb.MultiLineString:
		return polylinesFromOrb(v, v)
	case orb.Ring:
		return polygonsFromOrb(v, orb.MultiLineString{orb.LineString(v)})
	case orb.Polygon:
		return polygonsFromOrb(v, ringsOf(v))
	case orb.MultiPolygon:
		var rings orb.MultiLineString
		for _, p := range v {
			rings = append(rings, ringsOf(p)...)
		}
		return polygonsFromOrb(v, rings)
	case nil:
		return nil, errors.Wrap(ErrUnsupportedGeometry, "missing geometry")
	default:
		return nil, errors.Wrap(ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func polylinesFromOrb(g orb.Geometry, lines orb.MultiLineString) (Geometry, error) {
	if countPoints(lines) == 0 {
		return nil, errors.New("polylines without coordinates")
	}
	c, _ := planar.CentroidArea(g)
	return Polylines{Center: latLonFromPoint(c), Lines: fromMultiLineString(lines)}, nil
}

func polygonsFromOrb(g orb.Geometry, rings orb.MultiLineString) (Geometry, error) {
	if countPoints(rings) == 0 {
		return nil, errors.New("polygons without coordinates")
	}
	c, _ := planar.CentroidArea(g)
	return Polygons{Center: latLonFromPoint(c), Rings: fromMultiLineString(rings)}, nil
}

func ringsOf(p orb.Polygon) orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(p))
	for _, r := range p {
		mls = append(mls, orb.LineString(r))
	}
	return mls
}

// ToOrb converts g for GeoJSON output. Points become orb.Point, polylines a
// MultiLineString, and polygons a MultiPolygon with one single-ring polygon per
// ring, since the outer/inner relation of rings is not stored.
func ToOrb(g Geometry) orb.Geometry {
	switch v := g.(type) {
	case *Polylines:
		return ToOrb(*v)
	case *Polygons:
		return ToOrb(*v)
	case Polylines:
		return toMultiLineString(v.Lines)
	case Polygons:
		mp := make(orb.MultiPolygon, 0, len(v.Rings))
		for _, ls := range toMultiLineString(v.Rings) {
			mp = append(mp, orb.Polygon{orb.Ring(ls)})
		}
		return mp
	default:
		return g.GetCenter().point()
	}
}
