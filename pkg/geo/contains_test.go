package geo

import "testing"

func unitSquare() Ring {
	return Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
}

func TestRingContains_UnitSquare(t *testing.T) {
	cases := []struct {
		name string
		pt   Point
		want bool
	}{
		{"center", Point{0.5, 0.5}, true},
		{"outside bbox", Point{2, 2}, false},
		{"outside left", Point{-0.5, 0.5}, false},
		{"vertex", Point{0, 0}, true},
		{"mid bottom edge", Point{0.5, 0}, true},
		{"mid top edge", Point{0.5, 1}, true},
		{"mid left edge", Point{0, 0.5}, true},
		{"just outside right", Point{1.0000001, 0.5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RingContains(tc.pt, unitSquare()); got != tc.want {
				t.Fatalf("RingContains(%v)=%v want %v", tc.pt, got, tc.want)
			}
		})
	}
}

func TestRingContains_ClosedRingEquivalent(t *testing.T) {
	open := unitSquare()
	closed := append(append(Ring{}, open...), open[0])

	pts := []Point{{0.5, 0.5}, {2, 2}, {0, 0}, {0.5, 0}, {-1, 0.5}}
	for _, pt := range pts {
		if RingContains(pt, open) != RingContains(pt, closed) {
			t.Fatalf("open/closed ring disagree at %v", pt)
		}
	}
}

func TestRingContains_Degenerate(t *testing.T) {
	if RingContains(Point{0, 0}, nil) {
		t.Fatal("empty ring must contain nothing")
	}
	if RingContains(Point{0, 0}, Ring{{0, 0}}) {
		t.Fatal("single vertex must contain nothing")
	}
	if RingContains(Point{0.5, 0}, Ring{{0, 0}, {1, 0}}) {
		t.Fatal("two vertices must contain nothing")
	}
	// repeated vertices make zero-length edges; must not panic
	r := Ring{{0, 0}, {0, 0}, {1, 0}, {1, 1}, {1, 1}, {0, 1}}
	if !RingContains(Point{0.5, 0.5}, r) {
		t.Fatal("center must be inside despite repeated vertices")
	}
}

func TestRingContains_Concave(t *testing.T) {
	// two towers joined by a base; the gap between the towers is
	// inside the bounding box but outside the ring
	//
	// +-+ +-+
	// | | | |
	// | +-+ |
	// |     |
	// +-----+
	ring := Ring{
		{0, 0}, {0, 1}, {1, 1}, {1, 0.5}, {2, 0.5},
		{2, 1}, {3, 1}, {3, 0},
	}

	cases := []struct {
		name string
		pt   Point
		want bool
	}{
		{"in base", Point{1.5, 0.25}, true},
		{"in left tower", Point{0.5, 0.75}, true},
		{"in right tower", Point{2.5, 0.75}, true},
		{"in gap", Point{1.5, 0.75}, false},
		{"above gap", Point{1.5, 1.5}, false},
		{"left of ring", Point{-0.5, 0.5}, false},
		{"right of ring", Point{3.5, 0.5}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RingContains(tc.pt, ring); got != tc.want {
				t.Fatalf("RingContains(%v)=%v want %v", tc.pt, got, tc.want)
			}
		})
	}
}

func TestRingContains_VertexOnRay(t *testing.T) {
	// diamond: the ray from the center passes exactly through the
	// right vertex, shared by two edges; the crossing must be
	// counted once, not twice
	diamond := Ring{{-2, 0}, {0, -2}, {2, 0}, {0, 2}}

	if !RingContains(Point{0, 0}, diamond) {
		t.Fatal("center must be inside")
	}
	if !RingContains(Point{1, 0}, diamond) {
		t.Fatal("point between center and grazed vertex must be inside")
	}
	if RingContains(Point{3, 0}, diamond) {
		t.Fatal("point right of the grazed vertex must be outside")
	}
	if RingContains(Point{-3, 0}, diamond) {
		t.Fatal("point left of the diamond must be outside")
	}
	// the grazed vertices themselves are on the boundary
	if !RingContains(Point{2, 0}, diamond) {
		t.Fatal("right vertex must count as inside")
	}
	if !RingContains(Point{-2, 0}, diamond) {
		t.Fatal("left vertex must count as inside")
	}
}

func TestRingContains_HorizontalEdgeOnRay(t *testing.T) {
	// the bottom edge is horizontal and collinear with the ray
	ring := unitSquare()

	if !RingContains(Point{0.25, 0}, ring) {
		t.Fatal("point on horizontal edge must be inside")
	}
	if RingContains(Point{-0.25, 0}, ring) {
		t.Fatal("point left of horizontal edge must be outside")
	}
	if RingContains(Point{1.25, 0}, ring) {
		t.Fatal("point right of horizontal edge must be outside")
	}
}

func TestPolygonContains_Holes(t *testing.T) {
	poly := Polygon{
		Outer: Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}},
		Holes: []Ring{{{0.5, 0.5}, {1.5, 0.5}, {1.5, 1.5}, {0.5, 1.5}}},
	}

	if PolygonContains(Point{1, 1}, poly) {
		t.Fatal("point in hole must be outside")
	}
	if !PolygonContains(Point{0.2, 0.2}, poly) {
		t.Fatal("point between hole and outer ring must be inside")
	}
	if PolygonContains(Point{3, 3}, poly) {
		t.Fatal("point outside outer ring must be outside")
	}
	if !PolygonContains(Point{0, 0}, poly) {
		t.Fatal("outer boundary must be inside")
	}
}

func TestMultiPolygonContains_Or(t *testing.T) {
	mp := MultiPolygon{
		{Outer: unitSquare()},
		{Outer: Ring{{5, 5}, {6, 5}, {6, 6}, {5, 6}}},
	}

	if !MultiPolygonContains(Point{5.5, 5.5}, mp) {
		t.Fatal("point in second polygon must match")
	}
	if !MultiPolygonContains(Point{0.5, 0.5}, mp) {
		t.Fatal("point in first polygon must match")
	}
	if MultiPolygonContains(Point{3, 3}, mp) {
		t.Fatal("point in neither polygon must not match")
	}
	if MultiPolygonContains(Point{0.5, 0.5}, nil) {
		t.Fatal("empty multipolygon must not match")
	}
}

func TestRingContains_Idempotent(t *testing.T) {
	ring := unitSquare()
	pts := []Point{{0.5, 0.5}, {0, 0}, {2, 2}, {0.5, 0}}
	for _, pt := range pts {
		first := RingContains(pt, ring)
		for range 10 {
			if RingContains(pt, ring) != first {
				t.Fatalf("result drifted for %v", pt)
			}
		}
	}
}
