// Package geo implements planar point-in-polygon tests under the
// even-odd (ray casting) rule. Coordinates are plain Cartesian pairs;
// no geodetic correction is applied.
package geo

// Point is a position in the plane.
type Point struct {
	X, Y float64
}

// Ring is a closed polygon boundary. The closing segment from the last
// vertex back to the first is implicit; a ring may also carry an
// explicit duplicated closing vertex, both forms behave the same.
type Ring []Point

// Polygon is one outer ring plus zero or more hole rings. Holes are
// assumed to lie inside the outer ring and not overlap each other;
// this is not validated.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// MultiPolygon is an ordered collection of polygons. Members need not
// be disjoint.
type MultiPolygon []Polygon

// Bound is an axis-aligned bounding box.
type Bound struct {
	Min, Max Point
}

// Bound returns the ring's bounding box. The zero Bound is returned
// for an empty ring.
func (r Ring) Bound() Bound {
	if len(r) == 0 {
		return Bound{}
	}
	b := Bound{Min: r[0], Max: r[0]}
	for _, p := range r[1:] {
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	return b
}

// Contains reports whether p lies within the box, borders included.
func (b Bound) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
