package geometry

import "github.com/pkg/errors"

// Row is the flat storage form of a Geometry. At most one of Polylines and
// Polygons is non-nil; nil is stored as NULL.
type Row struct {
	CenterLat, CenterLon float64
	MinLat, MinLon       float64
	MaxLat, MaxLon       float64
	Polylines            []byte
	Polygons             []byte
}

// Codec maps geometries to rows and back. The byte format of the payload is
// left to the Serializer.
type Codec struct {
	serializer Serializer
}

// NewCodec returns a codec using s, or WKBSerializer when s is nil.
func NewCodec(s Serializer) *Codec {
	if s == nil {
		s = WKBSerializer{}
	}
	return &Codec{serializer: s}
}

// Encode flattens g. The bounding box is always derived from g.
func (c *Codec) Encode(g Geometry) (Row, error) {
	if isNil(g) {
		return Row{}, errors.New("encode geometry: nil geometry")
	}
	center := g.GetCenter()
	bounds := g.Bounds()
	row := Row{
		CenterLat: center.Latitude,
		CenterLon: center.Longitude,
		MinLat:    bounds.MinLat,
		MinLon:    bounds.MinLon,
		MaxLat:    bounds.MaxLat,
		MaxLon:    bounds.MaxLon,
	}

	var err error
	switch v := g.(type) {
	case Polylines:
		row.Polylines, err = c.serializer.Marshal(v.Lines)
	case *Polylines:
		row.Polylines, err = c.serializer.Marshal(v.Lines)
	case Polygons:
		row.Polygons, err = c.serializer.Marshal(v.Rings)
	case *Polygons:
		row.Polygons, err = c.serializer.Marshal(v.Rings)
	}
	if err != nil {
		return Row{}, errors.Wrapf(err, "encode %s", g.Kind())
	}
	return row, nil
}

// Decode rebuilds the geometry of a row. A polygon payload takes precedence
// over a polyline payload; a row with neither is a point. Payload slices are
// never nil: a geometry encoded with nil lines or rings decodes with empty
// ones.
func (c *Codec) Decode(row Row) (Geometry, error) {
	center := LatLon{Latitude: row.CenterLat, Longitude: row.CenterLon}

	switch {
	case row.Polygons != nil:
		rings, err := c.serializer.Unmarshal(row.Polygons)
		if err != nil {
			return nil, errors.Wrap(err, "decode polygons")
		}
		return Polygons{Center: center, Rings: rings}, nil
	case row.Polylines != nil:
		lines, err := c.serializer.Unmarshal(row.Polylines)
		if err != nil {
			return nil, errors.Wrap(err, "decode polylines")
		}
		return Polylines{Center: center, Lines: lines}, nil
	default:
		return Point{Center: center}, nil
	}
}

// isNil also catches typed nil pointers to the pointer variants.
func isNil(g Geometry) bool {
	switch v := g.(type) {
	case nil:
		return true
	case *Point:
		return v == nil
	case *Polylines:
		return v == nil
	case *Polygons:
		return v == nil
	}
	return false
}
