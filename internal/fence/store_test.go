package fence

import (
	"testing"

	"github.com/anandthakker/turf-inside/pkg/geo"
)

const squareDoc = `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,2],[0,0]]]}`

func TestDecode_Polygon(t *testing.T) {
	f, err := Decode("zone-1", "Zone One", squareDoc, 1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.ID != "zone-1" || f.Name != "Zone One" || f.Version != 1 {
		t.Fatalf("fence %+v", f)
	}
	if len(f.Geometry) != 1 {
		t.Fatalf("geometry %+v", f.Geometry)
	}
	want := geo.Bound{Min: geo.Point{X: 0, Y: 0}, Max: geo.Point{X: 2, Y: 2}}
	if f.Bound != want {
		t.Fatalf("bound %+v want %+v", f.Bound, want)
	}
	if !f.Contains(geo.Point{X: 1, Y: 1}) {
		t.Fatal("center must be contained")
	}
	if f.Contains(geo.Point{X: 3, Y: 3}) {
		t.Fatal("outside point must not be contained")
	}
}

func TestDecode_MergesCollections(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[9,9]]}},
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[5,5],[6,5],[6,6],[5,6],[5,5]]]}}
	]}`
	f, err := Decode("zones", "", doc, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Geometry) != 2 {
		t.Fatalf("merged %d polygons, want 2", len(f.Geometry))
	}
	want := geo.Bound{Min: geo.Point{X: 0, Y: 0}, Max: geo.Point{X: 6, Y: 6}}
	if f.Bound != want {
		t.Fatalf("bound %+v want %+v", f.Bound, want)
	}
	if !f.Contains(geo.Point{X: 5.5, Y: 5.5}) {
		t.Fatal("point in second polygon must be contained")
	}
	if f.Contains(geo.Point{X: 3, Y: 3}) {
		t.Fatal("point between polygons must not be contained")
	}
}

func TestDecode_Rejects(t *testing.T) {
	if _, err := Decode("", "x", squareDoc, 0); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := Decode("p", "", `{"type":"Point","coordinates":[0,0]}`, 0); err == nil {
		t.Fatal("expected error for document without areal geometry")
	}
	if _, err := Decode("b", "", `{"type":`, 0); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestStore_UpsertVersioning(t *testing.T) {
	s := NewStore()
	f1, _ := Decode("z", "", squareDoc, 2)
	if !s.Upsert(f1) {
		t.Fatal("first upsert must apply")
	}

	stale, _ := Decode("z", "", squareDoc, 1)
	if s.Upsert(stale) {
		t.Fatal("stale version must be dropped")
	}

	newer, _ := Decode("z", "", squareDoc, 3)
	if !s.Upsert(newer) {
		t.Fatal("newer version must apply")
	}
	got, ok := s.Get("z")
	if !ok || got.Version != 3 {
		t.Fatalf("Get: %+v ok=%v", got, ok)
	}

	// version 0 means unversioned and always applies
	unversioned, _ := Decode("z", "", squareDoc, 0)
	if !s.Upsert(unversioned) {
		t.Fatal("unversioned upsert must apply")
	}
}

func TestStore_GenerationAndDelete(t *testing.T) {
	s := NewStore()
	g0 := s.Generation()

	f, _ := Decode("z", "", squareDoc, 1)
	s.Upsert(f)
	if s.Generation() == g0 {
		t.Fatal("upsert must bump generation")
	}

	g1 := s.Generation()
	if !s.Delete("z") {
		t.Fatal("delete of existing fence must report true")
	}
	if s.Generation() == g1 {
		t.Fatal("delete must bump generation")
	}
	if s.Delete("z") {
		t.Fatal("delete of missing fence must report false")
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d", s.Len())
	}
}

func TestStore_AllSorted(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		f, _ := Decode(id, "", squareDoc, 0)
		s.Upsert(f)
	}
	all := s.All()
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("All()=%v", []string{all[0].ID, all[1].ID, all[2].ID})
	}
}

func TestStore_Readiness(t *testing.T) {
	s := NewStore()
	if ready, _ := s.Readiness(); ready {
		t.Fatal("store must start not ready")
	}
	s.SetReady()
	ready, n := s.Readiness()
	if !ready || n != 0 {
		t.Fatalf("ready=%v n=%d", ready, n)
	}
}
