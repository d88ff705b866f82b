package geometry

import (
	"encoding/binary"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/pkg/errors"
)

// Serializer turns the coordinate payload of polylines and polygons, a
// sequence of sequences of coordinates, into bytes and back.
type Serializer interface {
	Marshal(lines [][]LatLon) ([]byte, error)
	Unmarshal(data []byte) ([][]LatLon, error)
}

// WKBSerializer stores the payload as a little-endian WKB MultiLineString.
// Coordinates are kept as float64, so the round trip is exact.
type WKBSerializer struct{}

var _ Serializer = WKBSerializer{}

func (WKBSerializer) Marshal(lines [][]LatLon) ([]byte, error) {
	data, err := wkb.Marshal(toMultiLineString(lines), binary.LittleEndian)
	if err != nil {
		return nil, errors.Wrap(err, "marshal wkb")
	}
	return data, nil
}

func (WKBSerializer) Unmarshal(data []byte) ([][]LatLon, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal wkb")
	}
	mls, ok := g.(orb.MultiLineString)
	if !ok {
		return nil, errors.Errorf("unmarshal wkb: expected MultiLineString, got %s", g.GeoJSONType())
	}
	return fromMultiLineString(mls), nil
}
