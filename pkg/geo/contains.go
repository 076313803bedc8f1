package geo

// RingContains reports whether pt lies inside the ring under the
// even-odd rule. Points exactly on an edge or vertex count as inside;
// boundary checks use exact float comparison, no tolerance. Rings with
// fewer than 3 vertices contain nothing.
func RingContains(pt Point, ring Ring) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	skipNext := false
	for i := range ring {
		if skipNext {
			// the previous edge already counted a crossing through
			// the vertex this edge starts at
			skipNext = false
			continue
		}

		j := i - 1
		if j < 0 {
			j = len(ring) - 1
		}
		vi, vj := ring[i], ring[j]

		minX, maxX := vi.X, vj.X
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		minY, maxY := vi.Y, vj.Y
		if minY > maxY {
			minY, maxY = maxY, minY
		}

		if vi.Y == vj.Y {
			// horizontal edge: either the point sits on it, or the
			// edge cannot cross the ray at all
			if vi.Y == pt.Y && pt.X >= minX && pt.X <= maxX {
				return true
			}
			continue
		}

		if pt.Y > maxY || pt.Y < minY {
			continue
		}

		crossX := (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
		if pt.X == crossX {
			return true
		}
		if pt.X < crossX {
			inside = !inside
			if vi.Y == pt.Y {
				// the ray passes through a shared vertex; skip the
				// adjacent edge so the crossing is counted once
				skipNext = true
			}
		}
	}
	return inside
}

// PolygonContains reports whether pt lies in the polygon's filled
// area: inside the outer ring and inside none of the holes. Points on
// the outer boundary count as inside; points on a hole boundary count
// as inside the hole and are therefore excluded.
func PolygonContains(pt Point, poly Polygon) bool {
	if !RingContains(pt, poly.Outer) {
		return false
	}
	for _, hole := range poly.Holes {
		if RingContains(pt, hole) {
			return false
		}
	}
	return true
}

// MultiPolygonContains reports whether pt lies in any member polygon.
func MultiPolygonContains(pt Point, mp MultiPolygon) bool {
	for _, poly := range mp {
		if PolygonContains(pt, poly) {
			return true
		}
	}
	return false
}
