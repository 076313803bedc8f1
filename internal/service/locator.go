// Package service answers point queries against the fence registry.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/anandthakker/turf-inside/internal/cache/keys"
	"github.com/anandthakker/turf-inside/internal/core/model"
	"github.com/anandthakker/turf-inside/internal/core/observability"
	"github.com/anandthakker/turf-inside/internal/fence"
	"github.com/anandthakker/turf-inside/pkg/geo"
)

// Indexer is the coarse prefilter. Cover may be expensive; Candidates
// must be cheap.
type Indexer interface {
	Cover(mp geo.MultiPolygon) (model.Cells, error)
	Add(fenceID string, cells model.Cells)
	Remove(fenceID string)
	Candidates(pt geo.Point) ([]string, error)
}

// ResultCache stores serialized locate results.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Options struct {
	Index     Indexer     // nil disables the prefilter
	Cache     ResultCache // nil disables result caching
	CacheTTL  time.Duration
	OpTimeout time.Duration
}

type Locator struct {
	store     *fence.Store
	index     Indexer
	cache     ResultCache
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger
}

func New(store *fence.Store, logger *slog.Logger, opts Options) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	opTimeout := opts.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}
	return &Locator{
		store:     store,
		index:     opts.Index,
		cache:     opts.Cache,
		ttl:       ttl,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

// Upsert registers the fence, covering it with H3 cells when the
// prefilter is on. A covering failure is logged and the fence falls
// back to being tested on every query.
func (l *Locator) Upsert(ctx context.Context, f *model.Fence) bool {
	if l.index != nil {
		cells, err := l.index.Cover(f.Geometry)
		if err != nil {
			l.logger.Warn("fence covering failed, using exact test only",
				"fence", f.ID, "err", err)
			cells = nil
		}
		f.Cells = cells
	}
	if !l.store.Upsert(f) {
		return false
	}
	if l.index != nil {
		l.index.Add(f.ID, f.Cells)
	}
	return true
}

// Fences lists the registered fences sorted by ID.
func (l *Locator) Fences() []*model.Fence {
	return l.store.All()
}

func (l *Locator) Remove(ctx context.Context, id string) bool {
	if !l.store.Delete(id) {
		return false
	}
	if l.index != nil {
		l.index.Remove(id)
	}
	return true
}

// Locate reports the fences containing pt. Cache and prefilter
// failures degrade to the exhaustive exact test; the call itself
// cannot fail.
func (l *Locator) Locate(ctx context.Context, pt geo.Point) model.LocateResult {
	generation := l.store.Generation()
	key := keys.Locate(pt, generation)

	if l.cache != nil {
		if res, ok := l.cacheGet(ctx, key); ok {
			observability.IncCacheHit()
			return res
		}
		observability.IncCacheMiss()
	}

	res := model.LocateResult{Point: []float64{pt.X, pt.Y}}
	for _, f := range l.candidates(pt) {
		if f.Contains(pt) {
			res.FenceIDs = append(res.FenceIDs, f.ID)
		}
	}
	res.Inside = len(res.FenceIDs) > 0

	if res.Inside {
		observability.IncInside()
	} else {
		observability.IncOutside()
	}

	if l.cache != nil {
		l.cacheSet(ctx, key, res)
	}
	return res
}

func (l *Locator) candidates(pt geo.Point) []*model.Fence {
	if l.index == nil {
		return l.store.All()
	}
	ids, err := l.index.Candidates(pt)
	if err != nil {
		l.logger.Warn("prefilter failed, testing all fences", "err", err)
		return l.store.All()
	}
	observability.ObservePrefilterCandidates(len(ids))

	out := make([]*model.Fence, 0, len(ids))
	for _, id := range ids {
		if f, ok := l.store.Get(id); ok {
			out = append(out, f)
		}
	}
	return out
}

func (l *Locator) cacheGet(ctx context.Context, key string) (model.LocateResult, bool) {
	opCtx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	raw, err := l.cache.Get(opCtx, key)
	if err != nil {
		l.logger.Warn("result cache get failed", "err", err)
		return model.LocateResult{}, false
	}
	if raw == nil {
		return model.LocateResult{}, false
	}
	var res model.LocateResult
	if err := json.Unmarshal(raw, &res); err != nil {
		l.logger.Warn("result cache entry corrupt", "key", key, "err", err)
		return model.LocateResult{}, false
	}
	return res, true
}

func (l *Locator) cacheSet(ctx context.Context, key string, res model.LocateResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()
	if err := l.cache.Set(opCtx, key, raw, l.ttl); err != nil {
		l.logger.Warn("result cache set failed", "err", err)
	}
}
