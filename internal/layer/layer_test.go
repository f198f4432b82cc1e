package layer

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/shape"
)

func roundTrip(t *testing.T, l *BaseLayer) *Layer {
	t.Helper()
	cache := column.NewWriter()
	body, err := WriteLayer(l, cache)
	if err != nil {
		t.Fatalf("WriteLayer: %v", err)
	}
	r, err := column.Decode(cache.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	got, err := ReadLayer(body, r)
	if err != nil {
		t.Fatalf("ReadLayer: %v", err)
	}
	return got
}

func TestEmptyLayerRoundTrip(t *testing.T) {
	l := NewBaseLayer("empty", feature.Extent4096, nil, nil)
	got := roundTrip(t, l)
	if got.Name != "empty" {
		t.Errorf("name = %q, want empty", got.Name)
	}
	if got.Extent != feature.Extent4096 {
		t.Errorf("extent = %v, want Extent4096", got.Extent)
	}
	if len(got.Features) != 0 {
		t.Errorf("got %d features, want 0", len(got.Features))
	}
}

// Layer shape starts undefined; adding a feature with {a:u64,b:u64,c:f32}
// then one with {a:i64,b:u64,c:f32} should leave the layer shape as
// {a:i64,b:u64,c:f32} under the numeric promotion lattice.
func TestShapeInferredAndPromoted(t *testing.T) {
	l := NewBaseLayer("points", feature.Extent4096, nil, nil)

	f1 := feature.NewPointsFeature(nil, shape.Value{
		"a": shape.U64(1), "b": shape.U64(2), "c": shape.F32(1.5),
	}, []geometry.Point{{X: 0, Y: 0}}, nil)
	if err := l.AddFeature(f1); err != nil {
		t.Fatalf("AddFeature f1: %v", err)
	}

	f2 := feature.NewPointsFeature(nil, shape.Value{
		"a": shape.I64(-1), "b": shape.U64(3), "c": shape.F32(2.5),
	}, []geometry.Point{{X: 1, Y: 1}}, nil)
	if err := l.AddFeature(f2); err != nil {
		t.Fatalf("AddFeature f2: %v", err)
	}

	if l.Shape["a"].Primitive != shape.PrimI64 {
		t.Errorf("a = %v, want promoted to PrimI64", l.Shape["a"].Primitive)
	}
	if l.Shape["b"].Primitive != shape.PrimU64 {
		t.Errorf("b = %v, want PrimU64", l.Shape["b"].Primitive)
	}
	if l.Shape["c"].Primitive != shape.PrimF32 {
		t.Errorf("c = %v, want PrimF32", l.Shape["c"].Primitive)
	}

	f3 := feature.NewPointsFeature(nil, shape.Value{"a": shape.String("x")},
		[]geometry.Point{{X: 2, Y: 2}}, nil)
	if err := l.AddFeature(f3); err == nil {
		t.Fatal("expected an error merging a string value into a numeric shape field")
	}
}

func TestPinnedShapeNeverMerges(t *testing.T) {
	fixed := shape.Shape{"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString}}
	l := NewBaseLayer("fixed", feature.Extent4096, fixed, nil)

	f := feature.NewPointsFeature(nil, shape.Value{"name": shape.String("a"), "extra": shape.U64(1)},
		[]geometry.Point{{X: 0, Y: 0}}, nil)
	if err := l.AddFeature(f); err != nil {
		t.Fatalf("AddFeature: %v", err)
	}
	if len(l.Shape) != 1 {
		t.Fatalf("pinned shape should be untouched by AddFeature, got %+v", l.Shape)
	}
}

func TestFeaturesWrittenInTypeAscendingOrder(t *testing.T) {
	l := NewBaseLayer("mixed", feature.Extent4096, nil, nil)

	poly := feature.NewPolygonsFeature(nil, shape.Value{}, []geometry.Polygon{{
		geometry.LineWithOffset{Vertices: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}},
	}}, nil, nil, nil)
	pts := feature.NewPointsFeature(nil, shape.Value{}, []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, nil)
	line := feature.NewLinesFeature(nil, shape.Value{},
		[]geometry.LineWithOffset{{Vertices: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}}, nil)

	// Insert out of type order: Polygons (3), Points (1), Lines (2).
	if err := l.AddFeature(poly); err != nil {
		t.Fatalf("AddFeature poly: %v", err)
	}
	if err := l.AddFeature(pts); err != nil {
		t.Fatalf("AddFeature pts: %v", err)
	}
	if err := l.AddFeature(line); err != nil {
		t.Fatalf("AddFeature line: %v", err)
	}

	got := roundTrip(t, l)
	if len(got.Features) != 3 {
		t.Fatalf("got %d features, want 3", len(got.Features))
	}
	var lastType feature.FeatureType
	for i, f := range got.Features {
		if f.Type < lastType {
			t.Fatalf("feature %d has type %v after %v: features must be Type-ascending", i, f.Type, lastType)
		}
		lastType = f.Type
	}
}

func TestMShapeMergedFromVertexMValues(t *testing.T) {
	l := NewBaseLayer("roads", feature.Extent4096, nil, nil)

	m := shape.Value{"speed": shape.F64(42)}
	line := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 0, Y: 0, M: &m},
		{X: 1, Y: 1},
	}}
	f := feature.NewLinesFeature(nil, shape.Value{}, []geometry.LineWithOffset{line}, nil)
	if err := l.AddFeature(f); err != nil {
		t.Fatalf("AddFeature: %v", err)
	}
	if l.MShape == nil {
		t.Fatal("expected MShape to be inferred from the line's M-values")
	}
	if (*l.MShape)["speed"].Primitive != shape.PrimF64 {
		t.Errorf("speed = %v, want PrimF64", (*l.MShape)["speed"].Primitive)
	}
}
