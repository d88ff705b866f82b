// Package element identifies OpenStreetMap elements by type and id.
package element

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

// Key identifies a node, way or relation. Keys are comparable and can be used
// as map keys.
type Key struct {
	Type osm.Type
	ID   int64
}

// Node, Way and Relation build keys for the three element types.
func Node(id int64) Key     { return Key{Type: osm.TypeNode, ID: id} }
func Way(id int64) Key      { return Key{Type: osm.TypeWay, ID: id} }
func Relation(id int64) Key { return Key{Type: osm.TypeRelation, ID: id} }

// ValidType reports whether t is one of node, way or relation.
func ValidType(t osm.Type) bool {
	switch t {
	case osm.TypeNode, osm.TypeWay, osm.TypeRelation:
		return true
	}
	return false
}

// Valid reports whether the key has an element type.
func (k Key) Valid() bool {
	return ValidType(k.Type)
}

// String returns the key in "type/id" notation, e.g. "way/42".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Type, k.ID)
}

// FeatureID converts the key to the osm package's feature id.
func (k Key) FeatureID() osm.FeatureID {
	switch k.Type {
	case osm.TypeWay:
		return osm.WayID(k.ID).FeatureID()
	case osm.TypeRelation:
		return osm.RelationID(k.ID).FeatureID()
	default:
		return osm.NodeID(k.ID).FeatureID()
	}
}

// KeyFromFeatureID converts an osm feature id into a Key.
func KeyFromFeatureID(fid osm.FeatureID) (Key, error) {
	k := Key{Type: fid.Type(), ID: fid.Ref()}
	if !k.Valid() {
		return Key{}, fmt.Errorf("feature id %s is not a node, way or relation", fid)
	}
	return k, nil
}

// ParseKey parses "type/id" notation. The type is case-insensitive.
func ParseKey(s string) (Key, error) {
	typ, id, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Key{}, fmt.Errorf("invalid element key %q: expected type/id", s)
	}
	t := osm.Type(strings.ToLower(typ))
	if !ValidType(t) {
		return Key{}, fmt.Errorf("invalid element key %q: unknown type %q", s, typ)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Key{}, fmt.Errorf("invalid element key %q: %w", s, err)
	}
	return Key{Type: t, ID: n}, nil
}
