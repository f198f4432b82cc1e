package spatial

import (
	"testing"

	"github.com/tilekiln/ovtile/pkg/ovtile"
)

func buildTestTile(t *testing.T) *ovtile.Tile {
	t.Helper()
	b := ovtile.NewBuilder()
	l := ovtile.NewLayer("pois", ovtile.Extent4096)

	near := ovtile.NewPointsFeature(nil, ovtile.Value{}, []ovtile.Point{{X: 10, Y: 10}},
		&ovtile.BBox{Left: 0, Bottom: 0, Right: 20, Top: 20})
	far := ovtile.NewPointsFeature(nil, ovtile.Value{}, []ovtile.Point{{X: 1000, Y: 1000}},
		&ovtile.BBox{Left: 900, Bottom: 900, Right: 1100, Top: 1100})
	noBBox := ovtile.NewPointsFeature(nil, ovtile.Value{}, []ovtile.Point{{X: 5, Y: 5}}, nil)

	for _, f := range []ovtile.FeatureGeometry{near, far, noBBox} {
		if err := l.AddFeature(f); err != nil {
			t.Fatalf("AddFeature: %v", err)
		}
	}
	b.AddLayer(l)

	data, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tile, err := ovtile.DecodeTile(data)
	if err != nil {
		t.Fatalf("DecodeTile: %v", err)
	}
	return tile
}

func TestBuildIndexSkipsFeaturesWithoutBBox(t *testing.T) {
	tile := buildTestTile(t)
	idx, err := BuildIndex(tile)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Count() != 2 {
		t.Fatalf("got %d indexed features, want 2 (bbox-less feature must be skipped)", idx.Count())
	}
}

func TestQueryReturnsOnlyIntersectingFeatures(t *testing.T) {
	tile := buildTestTile(t)
	idx, err := BuildIndex(tile)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	hits := idx.Query(ovtile.BBox{Left: 0, Bottom: 0, Right: 50, Top: 50})
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Layer != "pois" {
		t.Errorf("layer = %q, want pois", hits[0].Layer)
	}

	hitsAll := idx.Query(ovtile.BBox{Left: -10, Bottom: -10, Right: 2000, Top: 2000})
	if len(hitsAll) != 2 {
		t.Fatalf("got %d hits querying the whole extent, want 2", len(hitsAll))
	}
}

func TestAllReturnsEveryIndexedFeature(t *testing.T) {
	tile := buildTestTile(t)
	idx, err := BuildIndex(tile)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(idx.All()) != idx.Count() {
		t.Errorf("All() length %d != Count() %d", len(idx.All()), idx.Count())
	}
}
