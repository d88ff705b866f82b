package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// BoundingBox is an axis-aligned rectangle in degrees.
type BoundingBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// NewBoundingBox validates the corners. Boxes crossing the antimeridian are
// not supported and must be split by the caller.
func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) (BoundingBox, error) {
	for _, v := range []float64{minLat, minLon, maxLat, maxLon} {
		if math.IsNaN(v) {
			return BoundingBox{}, errors.New("bounding box coordinate is NaN")
		}
	}
	if minLat > maxLat {
		return BoundingBox{}, errors.Errorf("min latitude (%f) must be <= max latitude (%f)", minLat, maxLat)
	}
	if minLon > maxLon {
		return BoundingBox{}, errors.Errorf("min longitude (%f) must be <= max longitude (%f)", minLon, maxLon)
	}
	return BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}, nil
}

// Intersects reports whether the boxes overlap. Touching edges and corners
// count as overlapping.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.MaxLon >= other.MinLon &&
		b.MaxLat >= other.MinLat &&
		b.MinLon <= other.MaxLon &&
		b.MinLat <= other.MaxLat
}

// Bound converts the box to an orb.Bound (X is longitude).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

func BoundingBoxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}
