// Package invalidation defines the fence update event schema.
package invalidation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const SchemaVersion = 1

// Event is one fence change. Upserts carry the new geometry; deletes
// carry only the fence id. FenceVersion orders events per fence so
// replays and reorderings cannot resurrect stale geometry.
type Event struct {
	Version      int             `json:"version"`
	Op           string          `json:"op"`
	FenceID      string          `json:"fence_id"`
	Name         string          `json:"name,omitempty"`
	FenceVersion uint64          `json:"fence_version"`
	TS           time.Time       `json:"ts"`
	Geometry     json.RawMessage `json:"geometry,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != SchemaVersion {
		return fmt.Errorf("version must be %d", SchemaVersion)
	}
	switch e.Op {
	case "upsert", "delete":
	default:
		return fmt.Errorf("op must be upsert|delete")
	}
	if strings.TrimSpace(e.FenceID) == "" {
		return fmt.Errorf("fence_id is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	if e.Op == "upsert" && len(e.Geometry) == 0 {
		return fmt.Errorf("geometry is required for upsert")
	}
	if e.Op == "delete" && len(e.Geometry) > 0 {
		return fmt.Errorf("geometry is not allowed for delete")
	}
	return nil
}
