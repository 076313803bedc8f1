package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anandthakker/turf-inside/internal/core/model"
	"github.com/anandthakker/turf-inside/internal/fence"
	"github.com/anandthakker/turf-inside/pkg/geo"
)

const squareDoc = `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}`
const farSquareDoc = `{"type":"Polygon","coordinates":[[[10,10],[12,10],[12,12],[10,12],[10,10]]]}`

type fakeIndex struct {
	candidates map[string][]string // "x,y" or "*" -> fence ids
	coverErr   error
	added      map[string]model.Cells
	removed    []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		candidates: map[string][]string{},
		added:      map[string]model.Cells{},
	}
}

func (f *fakeIndex) Cover(_ geo.MultiPolygon) (model.Cells, error) {
	if f.coverErr != nil {
		return nil, f.coverErr
	}
	return model.Cells{"cell-1"}, nil
}

func (f *fakeIndex) Add(id string, cells model.Cells) { f.added[id] = cells }
func (f *fakeIndex) Remove(id string)                 { f.removed = append(f.removed, id) }

func (f *fakeIndex) Candidates(_ geo.Point) ([]string, error) {
	if ids, ok := f.candidates["*"]; ok {
		return ids, nil
	}
	return nil, errors.New("no candidates configured")
}

type fakeCache struct {
	data   map[string][]byte
	getErr error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.data[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.data[key] = val
	return nil
}

func mustFence(t *testing.T, id, doc string, version uint64) *model.Fence {
	t.Helper()
	f, err := fence.Decode(id, "", doc, version)
	if err != nil {
		t.Fatalf("decode fence %s: %v", id, err)
	}
	return f
}

func TestLocate_NoIndexNoCache(t *testing.T) {
	store := fence.NewStore()
	loc := New(store, nil, Options{})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))
	loc.Upsert(ctx, mustFence(t, "far", farSquareDoc, 1))

	res := loc.Locate(ctx, geo.Point{X: 1, Y: 1})
	if !res.Inside || len(res.FenceIDs) != 1 || res.FenceIDs[0] != "near" {
		t.Fatalf("result %+v", res)
	}

	res = loc.Locate(ctx, geo.Point{X: 5, Y: 5})
	if res.Inside || len(res.FenceIDs) != 0 {
		t.Fatalf("result %+v", res)
	}
}

func TestLocate_PrefilterNarrowsCandidates(t *testing.T) {
	store := fence.NewStore()
	idx := newFakeIndex()
	loc := New(store, nil, Options{Index: idx})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))
	loc.Upsert(ctx, mustFence(t, "far", farSquareDoc, 1))

	if len(idx.added) != 2 {
		t.Fatalf("index saw %d adds, want 2", len(idx.added))
	}

	// prefilter only offers "far"; the exact test still rejects it
	idx.candidates["*"] = []string{"far"}
	res := loc.Locate(ctx, geo.Point{X: 1, Y: 1})
	if res.Inside {
		t.Fatalf("prefiltered-out fence must not match: %+v", res)
	}

	idx.candidates["*"] = []string{"near", "far"}
	res = loc.Locate(ctx, geo.Point{X: 1, Y: 1})
	if !res.Inside || len(res.FenceIDs) != 1 || res.FenceIDs[0] != "near" {
		t.Fatalf("result %+v", res)
	}
}

func TestLocate_IndexFailureFallsBackToAll(t *testing.T) {
	store := fence.NewStore()
	idx := newFakeIndex() // Candidates errors when unconfigured
	loc := New(store, nil, Options{Index: idx})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))

	res := loc.Locate(ctx, geo.Point{X: 1, Y: 1})
	if !res.Inside {
		t.Fatalf("fallback must still find the fence: %+v", res)
	}
}

func TestLocate_CoverFailureKeepsFence(t *testing.T) {
	store := fence.NewStore()
	idx := newFakeIndex()
	idx.coverErr = errors.New("polyfill exploded")
	loc := New(store, nil, Options{Index: idx})
	ctx := context.Background()

	if !loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1)) {
		t.Fatal("upsert must survive a covering failure")
	}
	if cells := idx.added["near"]; len(cells) != 0 {
		t.Fatalf("fence must be indexed uncelled, got %v", cells)
	}
}

func TestLocate_CachesResults(t *testing.T) {
	store := fence.NewStore()
	cache := newFakeCache()
	loc := New(store, nil, Options{Cache: cache})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))

	pt := geo.Point{X: 1, Y: 1}
	first := loc.Locate(ctx, pt)
	if !first.Inside {
		t.Fatalf("result %+v", first)
	}
	if len(cache.data) != 1 {
		t.Fatalf("cache holds %d entries, want 1", len(cache.data))
	}

	second := loc.Locate(ctx, pt)
	if !second.Inside || len(second.FenceIDs) != 1 {
		t.Fatalf("cached result %+v", second)
	}
}

func TestLocate_GenerationChangesKey(t *testing.T) {
	store := fence.NewStore()
	cache := newFakeCache()
	loc := New(store, nil, Options{Cache: cache})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))
	pt := geo.Point{X: 1, Y: 1}

	res := loc.Locate(ctx, pt)
	if !res.Inside {
		t.Fatalf("result %+v", res)
	}

	// removing the fence bumps the generation, so the stale cached
	// result is not reused
	loc.Remove(ctx, "near")
	res = loc.Locate(ctx, pt)
	if res.Inside {
		t.Fatalf("result after removal %+v", res)
	}
}

func TestLocate_CacheFailureDegrades(t *testing.T) {
	store := fence.NewStore()
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	loc := New(store, nil, Options{Cache: cache})
	ctx := context.Background()

	loc.Upsert(ctx, mustFence(t, "near", squareDoc, 1))

	res := loc.Locate(ctx, geo.Point{X: 1, Y: 1})
	if !res.Inside {
		t.Fatalf("cache failure must not change the answer: %+v", res)
	}
}
