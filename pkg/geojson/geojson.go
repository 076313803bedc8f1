// Package geojson holds a minimal GeoJSON object model: enough to
// decode RFC 7946 documents, flatten collections into singular
// geometries, and answer point-in-surface queries via pkg/geo.
package geojson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anandthakker/turf-inside/pkg/geo"
)

type Type string

const (
	TypePoint              Type = "Point"
	TypeMultiPoint         Type = "MultiPoint"
	TypeLineString         Type = "LineString"
	TypeMultiLineString    Type = "MultiLineString"
	TypePolygon            Type = "Polygon"
	TypeMultiPolygon       Type = "MultiPolygon"
	TypeGeometryCollection Type = "GeometryCollection"
	TypeFeature            Type = "Feature"
	TypeFeatureCollection  Type = "FeatureCollection"
)

// Object is any GeoJSON value: a Geometry, a Feature or a
// FeatureCollection.
type Object interface {
	Type() Type
}

// Geometry is one GeoJSON geometry. Exactly one coordinate field is
// populated, selected by Kind; GeometryCollection populates Geometries
// instead.
type Geometry struct {
	Kind            Type
	Point           []float64
	MultiPoint      [][]float64
	LineString      [][]float64
	MultiLineString [][][]float64
	Polygon         [][][]float64
	MultiPolygon    [][][][]float64
	Geometries      []*Geometry
}

func (g *Geometry) Type() Type { return g.Kind }

// Feature wraps a geometry with free-form properties.
type Feature struct {
	Geometry   *Geometry
	Properties map[string]any
	ID         any
}

func (f *Feature) Type() Type { return TypeFeature }

// FeatureCollection is an ordered list of features.
type FeatureCollection struct {
	Features []*Feature
}

func (fc *FeatureCollection) Type() Type { return TypeFeatureCollection }

// Decode parses a GeoJSON document into an Object.
func Decode(data []byte) (Object, error) {
	var hdr struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	switch Type(strings.TrimSpace(hdr.Type)) {
	case TypeFeature:
		return decodeFeature(data)
	case TypeFeatureCollection:
		var tmp struct {
			Features []json.RawMessage `json:"features"`
		}
		if err := json.Unmarshal(data, &tmp); err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		fc := &FeatureCollection{Features: make([]*Feature, 0, len(tmp.Features))}
		for i, raw := range tmp.Features {
			f, err := decodeFeature(raw)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			fc.Features = append(fc.Features, f)
		}
		return fc, nil
	default:
		return decodeGeometry(data)
	}
}

func decodeFeature(data []byte) (*Feature, error) {
	var tmp struct {
		Type       string          `json:"type"`
		Geometry   json.RawMessage `json:"geometry"`
		Properties map[string]any  `json:"properties"`
		ID         any             `json:"id"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("parse feature: %w", err)
	}
	if Type(tmp.Type) != TypeFeature {
		return nil, fmt.Errorf("expected Feature, got %q", tmp.Type)
	}
	f := &Feature{Properties: tmp.Properties, ID: tmp.ID}
	if len(tmp.Geometry) > 0 && string(tmp.Geometry) != "null" {
		g, err := decodeGeometry(tmp.Geometry)
		if err != nil {
			return nil, err
		}
		f.Geometry = g
	}
	return f, nil
}

func decodeGeometry(data []byte) (*Geometry, error) {
	var tmp struct {
		Type        string            `json:"type"`
		Coordinates json.RawMessage   `json:"coordinates"`
		Geometries  []json.RawMessage `json:"geometries"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}

	g := &Geometry{Kind: Type(strings.TrimSpace(tmp.Type))}
	var err error
	switch g.Kind {
	case TypePoint:
		err = coords(tmp.Coordinates, &g.Point)
	case TypeMultiPoint:
		err = coords(tmp.Coordinates, &g.MultiPoint)
	case TypeLineString:
		err = coords(tmp.Coordinates, &g.LineString)
	case TypeMultiLineString:
		err = coords(tmp.Coordinates, &g.MultiLineString)
	case TypePolygon:
		err = coords(tmp.Coordinates, &g.Polygon)
	case TypeMultiPolygon:
		err = coords(tmp.Coordinates, &g.MultiPolygon)
	case TypeGeometryCollection:
		g.Geometries = make([]*Geometry, 0, len(tmp.Geometries))
		for i, raw := range tmp.Geometries {
			sub, serr := decodeGeometry(raw)
			if serr != nil {
				return nil, fmt.Errorf("geometry %d: %w", i, serr)
			}
			g.Geometries = append(g.Geometries, sub)
		}
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type: %q", tmp.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s coords: %w", g.Kind, err)
	}
	return g, nil
}

func coords(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing coordinates")
	}
	return json.Unmarshal(raw, dst)
}

// Pt returns the geometry's position as a geo.Point. Valid only for
// Point geometries with at least an x and a y.
func (g *Geometry) Pt() (geo.Point, error) {
	if g.Kind != TypePoint {
		return geo.Point{}, fmt.Errorf("expected Point geometry, got %s", g.Kind)
	}
	if len(g.Point) < 2 {
		return geo.Point{}, fmt.Errorf("point needs [x,y], got %d values", len(g.Point))
	}
	return geo.Point{X: g.Point[0], Y: g.Point[1]}, nil
}

// Geo converts an areal geometry to the pkg/geo representation. A
// duplicated closing vertex, when present, is dropped; the geo types
// close rings implicitly.
func (g *Geometry) Geo() (geo.MultiPolygon, error) {
	switch g.Kind {
	case TypePolygon:
		p, err := toPolygon(g.Polygon)
		if err != nil {
			return nil, err
		}
		return geo.MultiPolygon{p}, nil
	case TypeMultiPolygon:
		mp := make(geo.MultiPolygon, 0, len(g.MultiPolygon))
		for i, rings := range g.MultiPolygon {
			p, err := toPolygon(rings)
			if err != nil {
				return nil, fmt.Errorf("polygon %d: %w", i, err)
			}
			mp = append(mp, p)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("expected Polygon or MultiPolygon, got %s", g.Kind)
	}
}

func toPolygon(rings [][][]float64) (geo.Polygon, error) {
	if len(rings) == 0 {
		return geo.Polygon{}, fmt.Errorf("empty polygon")
	}
	p := geo.Polygon{Outer: toRing(rings[0])}
	for _, hole := range rings[1:] {
		p.Holes = append(p.Holes, toRing(hole))
	}
	return p, nil
}

// toRing converts a GeoJSON ring, skipping malformed positions and
// dropping an explicit closing vertex.
func toRing(coords [][]float64) geo.Ring {
	ring := make(geo.Ring, 0, len(coords))
	for _, xy := range coords {
		if len(xy) < 2 {
			continue
		}
		ring = append(ring, geo.Point{X: xy[0], Y: xy[1]})
	}
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring
}
