package geojson

import (
	"fmt"

	"github.com/anandthakker/turf-inside/pkg/geo"
)

// Inside reports whether point lies on surface. The point argument
// must resolve to a Point geometry (a bare geometry or a feature
// wrapping one). Surface may be any GeoJSON object: a Point is matched
// by coordinate equality, Polygon and MultiPolygon by the even-odd
// containment test, and collections are flattened with each contained
// areal geometry tried in turn. Non-areal surface members (lines,
// multipoints) never match.
func Inside(point Object, surface Object) (bool, error) {
	pt, err := resolvePoint(point)
	if err != nil {
		return false, err
	}
	if surface == nil {
		return false, fmt.Errorf("surface: missing geometry")
	}

	for _, g := range Flatten(surface) {
		switch g.Kind {
		case TypePoint:
			other, err := g.Pt()
			if err != nil {
				return false, fmt.Errorf("surface: %w", err)
			}
			if pt == other {
				return true, nil
			}
		case TypePolygon, TypeMultiPolygon:
			mp, err := g.Geo()
			if err != nil {
				return false, fmt.Errorf("surface: %w", err)
			}
			if geo.MultiPolygonContains(pt, mp) {
				return true, nil
			}
		}
	}
	return false, nil
}

// resolvePoint unwraps the point argument down to coordinates,
// rejecting anything that is not point-shaped.
func resolvePoint(obj Object) (geo.Point, error) {
	switch v := obj.(type) {
	case *Geometry:
		if v == nil {
			return geo.Point{}, fmt.Errorf("point: missing geometry")
		}
		pt, err := v.Pt()
		if err != nil {
			return geo.Point{}, fmt.Errorf("point: %w", err)
		}
		return pt, nil
	case *Feature:
		if v == nil || v.Geometry == nil {
			return geo.Point{}, fmt.Errorf("point: feature has no geometry")
		}
		return resolvePoint(v.Geometry)
	case nil:
		return geo.Point{}, fmt.Errorf("point: missing geometry")
	default:
		return geo.Point{}, fmt.Errorf("point: expected a Point geometry, got %s", obj.Type())
	}
}
