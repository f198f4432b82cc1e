package ovtile

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/shape"
)

func TestBuilderEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBuilder()
	l := NewLayer("roads", Extent4096)
	id := uint64(7)
	f := NewLinesFeature(&id, Value{"name": shape.String("Main St")},
		[]LineWithOffset{{Vertices: []Point{{X: 0, Y: 0}, {X: 100, Y: 50}}}}, nil)
	if err := l.AddFeature(f); err != nil {
		t.Fatalf("AddFeature: %v", err)
	}
	b.AddLayer(l)

	data, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tile, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	names := tile.LayerNames()
	if len(names) != 1 || names[0] != "roads" {
		t.Fatalf("layer names = %v, want [roads]", names)
	}

	roads, ok := tile.Layer("roads")
	if !ok {
		t.Fatal("roads layer missing")
	}
	feats := roads.Features()
	if len(feats) != 1 {
		t.Fatalf("got %d features, want 1", len(feats))
	}
	gotID, hasID := feats[0].ID()
	if !hasID || gotID != 7 {
		t.Errorf("id = (%v,%v), want (7,true)", gotID, hasID)
	}
	geom, err := feats[0].Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.LineGeom) != 1 || len(geom.LineGeom[0].Vertices) != 2 {
		t.Fatalf("got %+v, want one 2-vertex line", geom.LineGeom)
	}
}

func TestDecodeOptionsDefaultTranscodesLegacy(t *testing.T) {
	opts := DefaultDecodeOptions()
	if !opts.TranscodeLegacy {
		t.Error("DefaultDecodeOptions should default to transcoding legacy layers")
	}
}

func TestEmptyBuilderProducesEmptyTile(t *testing.T) {
	b := NewBuilder()
	data, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tile, err := DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	if len(tile.LayerNames()) != 0 {
		t.Errorf("got %d layers, want 0", len(tile.LayerNames()))
	}
}
