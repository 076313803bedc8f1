package fence

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/anandthakker/turf-inside/internal/core/model"
)

// LoadFile reads a bootstrap fence set from a GeoJSON FeatureCollection
// on disk. Each feature becomes one fence; the fence id comes from the
// feature id or an "id" property, the name and version from properties.
func LoadFile(path string) ([]*model.Fence, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fence file: %w", err)
	}
	fences, err := Load(raw)
	if err != nil {
		return nil, fmt.Errorf("fence file %s: %w", path, err)
	}
	return fences, nil
}

func Load(raw []byte) ([]*model.Fence, error) {
	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         any             `json:"id"`
			Properties map[string]any  `json:"properties"`
			Geometry   json.RawMessage `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", doc.Type)
	}

	out := make([]*model.Fence, 0, len(doc.Features))
	for i, feat := range doc.Features {
		id := featureID(feat.ID, feat.Properties)
		if id == "" {
			return nil, fmt.Errorf("feature %d: no id", i)
		}
		name, _ := feat.Properties["name"].(string)

		var version uint64
		if v, ok := feat.Properties["version"].(float64); ok && v > 0 {
			version = uint64(v)
		}

		if len(feat.Geometry) == 0 || string(feat.Geometry) == "null" {
			return nil, fmt.Errorf("feature %d (%s): no geometry", i, id)
		}
		f, err := Decode(id, name, string(feat.Geometry), version)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func featureID(id any, props map[string]any) string {
	switch v := id.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if s, ok := props["id"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
