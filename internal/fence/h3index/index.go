// Package h3index maintains a coarse H3 covering per fence so point
// queries only run the exact containment test against nearby fences.
//
// The covering is approximate: PolygonToCells keeps cells whose center
// falls in the polygon, so the covering is padded with one grid ring
// and with the cells of every ring vertex. Fences registered without
// cells are returned as candidates for every query, so a missing or
// failed covering degrades to the exact test, never to a wrong answer.
package h3index

import (
	"fmt"
	"sort"
	"sync"

	h3 "github.com/uber/h3-go/v4"

	"github.com/anandthakker/turf-inside/internal/core/model"
	"github.com/anandthakker/turf-inside/pkg/geo"
)

type Index struct {
	res int

	mu       sync.RWMutex
	byCell   map[string]map[string]struct{}
	byFence  map[string]model.Cells
	uncelled map[string]struct{}
}

func New(res int) (*Index, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return &Index{
		res:      res,
		byCell:   make(map[string]map[string]struct{}),
		byFence:  make(map[string]model.Cells),
		uncelled: make(map[string]struct{}),
	}, nil
}

func (ix *Index) Res() int { return ix.res }

// Cover computes the padded H3 covering of a multipolygon. Geometry is
// in GeoJSON axis order, X=lng and Y=lat.
func (ix *Index) Cover(mp geo.MultiPolygon) (model.Cells, error) {
	seen := make(map[h3.Cell]struct{})
	for pi, poly := range mp {
		outer := toLoop(poly.Outer)
		if len(outer) < 3 {
			return nil, fmt.Errorf("polygon %d outer ring has < 3 vertices", pi)
		}
		holes := make([]h3.GeoLoop, 0, len(poly.Holes))
		for _, hole := range poly.Holes {
			holes = append(holes, toLoop(hole))
		}

		cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer, Holes: holes}, ix.res)
		if err != nil {
			return nil, fmt.Errorf("h3 polyfill: %w", err)
		}
		for _, c := range cells {
			seen[c] = struct{}{}
		}

		// thin or small polygons can polyfill to nothing; the vertex
		// cells keep them reachable
		for _, v := range poly.Outer {
			c, err := h3.LatLngToCell(h3.LatLng{Lat: v.Y, Lng: v.X}, ix.res)
			if err != nil {
				return nil, fmt.Errorf("h3 cell for vertex: %w", err)
			}
			seen[c] = struct{}{}
		}
	}

	// pad by one ring so boundary points landing in a neighbor cell
	// still see the fence
	padded := make(map[string]struct{}, len(seen))
	for c := range seen {
		disk, err := h3.GridDisk(c, 1)
		if err != nil {
			return nil, fmt.Errorf("h3 grid disk: %w", err)
		}
		for _, n := range disk {
			padded[n.String()] = struct{}{}
		}
	}

	out := make(model.Cells, 0, len(padded))
	for s := range padded {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// Add registers the fence under its cells. An empty cell list puts the
// fence in the always-candidate set.
func (ix *Index) Add(fenceID string, cells model.Cells) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(fenceID)
	if len(cells) == 0 {
		ix.uncelled[fenceID] = struct{}{}
		return
	}
	ix.byFence[fenceID] = cells
	for _, c := range cells {
		set, ok := ix.byCell[c]
		if !ok {
			set = make(map[string]struct{})
			ix.byCell[c] = set
		}
		set[fenceID] = struct{}{}
	}
}

func (ix *Index) Remove(fenceID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(fenceID)
}

func (ix *Index) removeLocked(fenceID string) {
	delete(ix.uncelled, fenceID)
	for _, c := range ix.byFence[fenceID] {
		if set, ok := ix.byCell[c]; ok {
			delete(set, fenceID)
			if len(set) == 0 {
				delete(ix.byCell, c)
			}
		}
	}
	delete(ix.byFence, fenceID)
}

// Candidates returns the IDs of fences whose covering holds the
// point's cell, plus every fence without a covering. Order is sorted
// for determinism.
func (ix *Index) Candidates(pt geo.Point) ([]string, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: pt.Y, Lng: pt.X}, ix.res)
	if err != nil {
		return nil, fmt.Errorf("h3 cell for point: %w", err)
	}
	key := cell.String()

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.byCell[key])+len(ix.uncelled))
	for id := range ix.byCell[key] {
		out = append(out, id)
	}
	for id := range ix.uncelled {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func toLoop(ring geo.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, p := range ring {
		loop = append(loop, h3.LatLng{Lat: p.Y, Lng: p.X})
	}
	return loop
}
