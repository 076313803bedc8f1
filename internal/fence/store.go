// Package fence keeps the in-memory registry of geofences.
package fence

import (
	"fmt"
	"sort"
	"sync"

	"github.com/anandthakker/turf-inside/internal/core/model"
	"github.com/anandthakker/turf-inside/internal/core/observability"
	"github.com/anandthakker/turf-inside/pkg/geo"
	"github.com/anandthakker/turf-inside/pkg/geojson"
)

// Decode builds a Fence from raw GeoJSON. The document may be a
// Polygon, MultiPolygon, or any feature/collection wrapping them; all
// areal geometries found are merged into one multipolygon. Non-areal
// geometries are ignored; a document with none is an error.
func Decode(id, name, raw string, version uint64) (*model.Fence, error) {
	if id == "" {
		return nil, fmt.Errorf("fence id is required")
	}
	obj, err := geojson.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("fence %s: %w", id, err)
	}

	var mp geo.MultiPolygon
	for _, g := range geojson.Flatten(obj) {
		switch g.Kind {
		case geojson.TypePolygon, geojson.TypeMultiPolygon:
			part, err := g.Geo()
			if err != nil {
				return nil, fmt.Errorf("fence %s: %w", id, err)
			}
			mp = append(mp, part...)
		}
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("fence %s: no areal geometry in document", id)
	}

	return &model.Fence{
		ID:       id,
		Name:     name,
		GeoJSON:  raw,
		Version:  version,
		Geometry: mp,
		Bound:    bound(mp),
	}, nil
}

// bound is the union of the outer ring boxes; holes lie inside their
// outer ring and cannot extend it.
func bound(mp geo.MultiPolygon) geo.Bound {
	var b geo.Bound
	for i, poly := range mp {
		rb := poly.Outer.Bound()
		if i == 0 {
			b = rb
			continue
		}
		if rb.Min.X < b.Min.X {
			b.Min.X = rb.Min.X
		}
		if rb.Min.Y < b.Min.Y {
			b.Min.Y = rb.Min.Y
		}
		if rb.Max.X > b.Max.X {
			b.Max.X = rb.Max.X
		}
		if rb.Max.Y > b.Max.Y {
			b.Max.Y = rb.Max.Y
		}
	}
	return b
}

// Store is the registry. Generation bumps on every mutation so cached
// query results from older fence sets can be distinguished.
type Store struct {
	mu         sync.RWMutex
	fences     map[string]*model.Fence
	generation uint64
	ready      bool
}

func NewStore() *Store {
	return &Store{fences: make(map[string]*model.Fence)}
}

// Upsert replaces the fence under f.ID. A stale version (lower than
// the one already held) is dropped and reported false.
func (s *Store) Upsert(f *model.Fence) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.fences[f.ID]; ok && f.Version != 0 && f.Version <= cur.Version {
		return false
	}
	s.fences[f.ID] = f
	s.generation++
	observability.SetFencesLoaded(len(s.fences))
	return true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fences[id]; !ok {
		return false
	}
	delete(s.fences, id)
	s.generation++
	observability.SetFencesLoaded(len(s.fences))
	return true
}

func (s *Store) Get(id string) (*model.Fence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fences[id]
	return f, ok
}

// All returns the fences sorted by ID.
func (s *Store) All() []*model.Fence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Fence, 0, len(s.fences))
	for _, f := range s.fences {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fences)
}

// Generation identifies the current fence set.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// SetReady marks the initial load as finished.
func (s *Store) SetReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}

func (s *Store) Readiness() (bool, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready, len(s.fences)
}
