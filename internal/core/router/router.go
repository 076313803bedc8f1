// Package router parses and serves the HTTP API.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anandthakker/turf-inside/internal/core/model"
	"github.com/anandthakker/turf-inside/internal/core/observability"
	"github.com/anandthakker/turf-inside/internal/fence"
	"github.com/anandthakker/turf-inside/pkg/geo"
	"github.com/anandthakker/turf-inside/pkg/geojson"
)

// Locator answers point queries and manages fences.
type Locator interface {
	Locate(ctx context.Context, pt geo.Point) model.LocateResult
	Upsert(ctx context.Context, f *model.Fence) bool
	Remove(ctx context.Context, id string) bool
	Fences() []*model.Fence
}

type API struct {
	logger *slog.Logger
	loc    Locator
}

func New(logger *slog.Logger, loc Locator) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{logger: logger, loc: loc}
}

// Inside evaluates the bare predicate: is the point on the surface.
// Both arguments arrive as GeoJSON; point also accepts the "x,y"
// shorthand.
func (a *API) Inside() http.HandlerFunc {
	return instrumented("/inside", func(w http.ResponseWriter, r *http.Request) {
		ptObj, err := parsePointParam(r.URL.Query().Get("point"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rawSurface := strings.TrimSpace(r.URL.Query().Get("surface"))
		if rawSurface == "" {
			http.Error(w, "missing required parameter: surface", http.StatusBadRequest)
			return
		}
		surface, err := geojson.Decode([]byte(rawSurface))
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid surface: %v", err), http.StatusBadRequest)
			return
		}

		inside, err := geojson.Inside(ptObj, surface)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if inside {
			observability.IncInside()
		} else {
			observability.IncOutside()
		}
		writeJSON(w, http.StatusOK, map[string]bool{"inside": inside})
	})
}

// Locate reports which registered fences contain the point. The
// optional "fence" parameter narrows the answer to a single fence.
func (a *API) Locate() http.HandlerFunc {
	return instrumented("/locate", func(w http.ResponseWriter, r *http.Request) {
		pt, err := parsePoint(r.URL.Query().Get("point"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q := model.PointQuery{
			Point:   pt,
			FenceID: strings.TrimSpace(r.URL.Query().Get("fence")),
		}
		a.logger.Debug("locate", "query", q.String())

		res := a.loc.Locate(r.Context(), q.Point)
		if q.FenceID != "" {
			res = narrowTo(res, q.FenceID)
		}
		writeJSON(w, http.StatusOK, res)
	})
}

func narrowTo(res model.LocateResult, fenceID string) model.LocateResult {
	var ids []string
	for _, id := range res.FenceIDs {
		if id == fenceID {
			ids = append(ids, id)
		}
	}
	res.FenceIDs = ids
	res.Inside = len(ids) > 0
	return res
}

type fenceRequest struct {
	Name     string          `json:"name"`
	Version  uint64          `json:"version"`
	Geometry json.RawMessage `json:"geometry"`
}

func (a *API) UpsertFence() http.HandlerFunc {
	return instrumented("/fences", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req fenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
			return
		}
		if len(req.Geometry) == 0 {
			http.Error(w, "missing required field: geometry", http.StatusBadRequest)
			return
		}

		f, err := fence.Decode(id, req.Name, string(req.Geometry), req.Version)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if !a.loc.Upsert(r.Context(), f) {
			http.Error(w, "stale fence version", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "stored"})
	})
}

func (a *API) DeleteFence() http.HandlerFunc {
	return instrumented("/fences", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !a.loc.Remove(r.Context(), id) {
			http.Error(w, "fence not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

type fenceSummary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	Version uint64    `json:"version,omitempty"`
	BBox    []float64 `json:"bbox"`
}

func (a *API) ListFences() http.HandlerFunc {
	return instrumented("/fences", func(w http.ResponseWriter, r *http.Request) {
		fences := a.loc.Fences()
		out := make([]fenceSummary, 0, len(fences))
		for _, f := range fences {
			out = append(out, fenceSummary{
				ID:      f.ID,
				Name:    f.Name,
				Version: f.Version,
				BBox:    []float64{f.Bound.Min.X, f.Bound.Min.Y, f.Bound.Max.X, f.Bound.Max.Y},
			})
		}
		writeJSON(w, http.StatusOK, out)
	})
}

// parsePoint reads the "x,y" shorthand.
func parsePoint(raw string) (geo.Point, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return geo.Point{}, errors.New("missing required parameter: point")
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return geo.Point{}, errors.New("invalid point: expected x,y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid point x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid point y: %w", err)
	}
	return geo.Point{X: x, Y: y}, nil
}

// parsePointParam accepts either the "x,y" shorthand or a GeoJSON
// Point document, returning a geojson Object for the predicate.
func parsePointParam(raw string) (geojson.Object, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("missing required parameter: point")
	}
	if strings.HasPrefix(raw, "{") {
		obj, err := geojson.Decode([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid point: %w", err)
		}
		return obj, nil
	}
	pt, err := parsePoint(raw)
	if err != nil {
		return nil, err
	}
	return &geojson.Geometry{Kind: geojson.TypePoint, Point: []float64{pt.X, pt.Y}}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func instrumented(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}
