// Package geometry holds the in-memory shape of an element and the codec that
// flattens it into a storage row.
package geometry

import "github.com/paulmach/orb"

// LatLon is a WGS84 coordinate.
type LatLon struct {
	Latitude  float64
	Longitude float64
}

func (ll LatLon) point() orb.Point {
	return orb.Point{ll.Longitude, ll.Latitude}
}

func latLonFromPoint(p orb.Point) LatLon {
	return LatLon{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Kind discriminates the Geometry variants.
type Kind int

const (
	KindPoint Kind = iota
	KindPolylines
	KindPolygons
)

func (k Kind) String() string {
	switch k {
	case KindPolylines:
		return "polylines"
	case KindPolygons:
		return "polygons"
	default:
		return "point"
	}
}

// Geometry is one of Point, Polylines or Polygons. The set of variants is
// closed; other packages cannot add implementations.
type Geometry interface {
	GetCenter() LatLon
	Bounds() BoundingBox
	Kind() Kind

	geometry()
}

// Point is the geometry of a node, or of any element reduced to one position.
type Point struct {
	Center LatLon
}

// Polylines is an ordered set of open lines, e.g. for a way that is not an area.
type Polylines struct {
	Center LatLon
	Lines  [][]LatLon
}

// Polygons is an ordered set of rings, e.g. for an area or a multipolygon
// relation. Inner and outer rings are both listed.
type Polygons struct {
	Center LatLon
	Rings  [][]LatLon
}

var (
	_ Geometry = Point{}
	_ Geometry = Polylines{}
	_ Geometry = Polygons{}
)

func (Point) geometry()     {}
func (Polylines) geometry() {}
func (Polygons) geometry()  {}

func (p Point) GetCenter() LatLon     { return p.Center }
func (p Polylines) GetCenter() LatLon { return p.Center }
func (p Polygons) GetCenter() LatLon  { return p.Center }

func (Point) Kind() Kind     { return KindPoint }
func (Polylines) Kind() Kind { return KindPolylines }
func (Polygons) Kind() Kind  { return KindPolygons }

// Bounds of a point is the degenerate box around it.
func (p Point) Bounds() BoundingBox {
	return BoundingBoxFromBound(p.Center.point().Bound())
}

func (p Polylines) Bounds() BoundingBox {
	return boundsOf(p.Center, p.Lines)
}

func (p Polygons) Bounds() BoundingBox {
	return boundsOf(p.Center, p.Rings)
}

// boundsOf falls back to the center when lines holds no coordinate at all.
func boundsOf(center LatLon, lines [][]LatLon) BoundingBox {
	mls := toMultiLineString(lines)
	if countPoints(mls) == 0 {
		return BoundingBoxFromBound(center.point().Bound())
	}
	var bound orb.Bound
	first := true
	for _, ls := range mls {
		if len(ls) == 0 {
			continue
		}
		if first {
			bound = ls.Bound()
			first = false
			continue
		}
		bound = bound.Union(ls.Bound())
	}
	return BoundingBoxFromBound(bound)
}

func countPoints(mls orb.MultiLineString) int {
	n := 0
	for _, ls := range mls {
		n += len(ls)
	}
	return n
}

// toMultiLineString never returns a nil line string, as the WKB encoder
// writes nothing for those.
func toMultiLineString(lines [][]LatLon) orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(lines))
	for _, line := range lines {
		ls := make(orb.LineString, len(line))
		for i, ll := range line {
			ls[i] = ll.point()
		}
		mls = append(mls, ls)
	}
	return mls
}

func fromMultiLineString(mls orb.MultiLineString) [][]LatLon {
	lines := make([][]LatLon, len(mls))
	for i, ls := range mls {
		line := make([]LatLon, len(ls))
		for j, p := range ls {
			line[j] = latLonFromPoint(p)
		}
		lines[i] = line
	}
	return lines
}
