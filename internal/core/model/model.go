// Package model defines core domain types shared across the service.
package model

import (
	"fmt"

	"github.com/anandthakker/turf-inside/pkg/geo"
)

// Fence is a named areal region points are tested against. Geometry
// and Bound are decoded once at registration; Cells is the optional
// coarse H3 covering used to prefilter candidates.
type Fence struct {
	ID       string
	Name     string
	GeoJSON  string
	Version  uint64
	Geometry geo.MultiPolygon
	Bound    geo.Bound
	Cells    Cells
}

// Contains runs the exact even-odd test against the fence geometry.
// The bounding box rejects cheap misses first; it never changes the
// outcome, only skips the edge walk.
func (f *Fence) Contains(pt geo.Point) bool {
	if !f.Bound.Contains(pt) {
		return false
	}
	return geo.MultiPolygonContains(pt, f.Geometry)
}

type Cells []string

// PointQuery is a parsed locate request.
type PointQuery struct {
	Point geo.Point
	// FenceID narrows the query to a single fence when set.
	FenceID string
}

func (q PointQuery) String() string {
	return fmt.Sprintf("%.8f,%.8f,fence=%s", q.Point.X, q.Point.Y, q.FenceID)
}

// LocateResult lists the fences containing the queried point. Point
// is an [x, y] pair, matching the GeoJSON position order.
type LocateResult struct {
	Point    []float64 `json:"point"`
	FenceIDs []string  `json:"fence_ids"`
	Inside   bool      `json:"inside"`
}
