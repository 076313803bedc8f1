// Package keys builds the result cache keys.
package keys

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/anandthakker/turf-inside/pkg/geo"
)

// Locate keys a point query against a fence-set generation. The point
// is hashed from its raw float bits, so keys collide only for exactly
// equal coordinates, matching the exact-equality containment
// semantics. Generation separates results computed against different
// fence sets.
func Locate(pt geo.Point, generation uint64) string {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(pt.X))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(pt.Y))
	binary.LittleEndian.PutUint64(buf[16:], generation)
	return fmt.Sprintf("locate:g%d:%016x", generation, xxhash.Sum64(buf[:]))
}
