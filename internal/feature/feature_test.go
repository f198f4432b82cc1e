package feature

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/shape"
)

var propShape = shape.Shape{
	"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
}

func propsFor(name string) shape.Value {
	return shape.Value{"name": shape.String(name)}
}

func roundTrip(t *testing.T, f BaseFeature, mShape *shape.Shape) *OpenFeature {
	t.Helper()
	w := column.NewWriter()
	data, err := WriteFeature(f, propShape, mShape, w)
	if err != nil {
		t.Fatalf("WriteFeature: %v", err)
	}
	r, err := column.Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	var ms shape.Shape
	if mShape != nil {
		ms = *mShape
	}
	of, err := ReadFeature(data, Extent4096, r, propShape, ms)
	if err != nil {
		t.Fatalf("ReadFeature: %v", err)
	}
	return of
}

func TestPointsMultiRoundTrip(t *testing.T) {
	f := NewPointsFeature(nil, propsFor("fence posts"),
		[]geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}, nil)

	of := roundTrip(t, f, nil)
	if of.Type != Points {
		t.Fatalf("type = %v, want Points", of.Type)
	}
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.PointGeom) != 3 {
		t.Fatalf("got %d points, want 3", len(geom.PointGeom))
	}
	want := []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
	for i, p := range want {
		if !geom.PointGeom[i].Equal(p) {
			t.Errorf("point %d = %+v, want %+v", i, geom.PointGeom[i], p)
		}
	}
}

// A single point is woven inline regardless of whether it carries an
// M-value — the original silently drops M in that case, and this is not a
// bug to fix (SPEC_FULL.md 4.5, confirmed against the original's own
// single()/encode_to_cache).
func TestSinglePointIsWovenInlineAndDropsM(t *testing.T) {
	mShape := shape.Shape{"speed": {Kind: shape.KindPrimitive, Primitive: shape.PrimF64}}
	m := shape.Value{"speed": shape.F64(42)}
	f := NewPointsFeature(nil, propsFor("lone beacon"),
		[]geometry.Point{{X: 7, Y: -3, M: &m}}, nil)

	of := roundTrip(t, f, &mShape)
	if !of.single {
		t.Fatal("single point feature should set the single flag")
	}
	if of.hasMValues {
		t.Fatal("a lone point's M-value must not set the feature's M-values flag")
	}
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.PointGeom) != 1 || !geom.PointGeom[0].Equal(geometry.Point{X: 7, Y: -3}) {
		t.Fatalf("got %+v, want single point (7,-3)", geom.PointGeom)
	}
	if geom.PointGeom[0].HasM() {
		t.Error("single point's M-value should have been silently dropped, not round-tripped")
	}
}

func TestPoints3DMultiWithMValues(t *testing.T) {
	mShape := shape.Shape{"speed": {Kind: shape.KindPrimitive, Primitive: shape.PrimF64}}
	m1 := shape.Value{"speed": shape.F64(10)}
	f := NewPoints3DFeature(nil, propsFor("track"),
		[]geometry.Point3D{
			{X: 1, Y: 2, Z: 3, M: &m1},
			{X: 4, Y: 5, Z: 6},
		}, nil)

	of := roundTrip(t, f, &mShape)
	if !of.hasMValues {
		t.Fatal("expected hasMValues true")
	}
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.Point3D) != 2 {
		t.Fatalf("got %d points, want 2", len(geom.Point3D))
	}
	if geom.Point3D[0].M == nil {
		t.Fatal("first point should have decoded an M-value")
	}
	if got := (*geom.Point3D[0].M)["speed"].Primitive.F64; got != 10 {
		t.Errorf("first point speed = %v, want 10", got)
	}
	if geom.Point3D[1].M == nil {
		t.Fatal("second point should still decode a (zero-filled) M-value record since the feature has M-values")
	}
	if got := (*geom.Point3D[1].M)["speed"].Primitive.F64; got != 0 {
		t.Errorf("second point speed = %v, want 0 (bare default fill)", got)
	}
}

// SPEC_FULL.md 4.4 case 1: within an M-bearing line, a vertex lacking its
// own M-value gets the bare placeholder fill.
func TestLineMValuesCaseOneBareVertexFill(t *testing.T) {
	mShape := shape.Shape{"speed": {Kind: shape.KindPrimitive, Primitive: shape.PrimF64}}
	m1 := shape.Value{"speed": shape.F64(55)}
	line := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 0, Y: 0, M: &m1},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
	}}
	f := NewLinesFeature(nil, propsFor("road"), []geometry.LineWithOffset{line}, nil)

	of := roundTrip(t, f, &mShape)
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.LineGeom) != 1 || len(geom.LineGeom[0].Vertices) != 3 {
		t.Fatalf("got %+v, want one 3-vertex line", geom.LineGeom)
	}
	verts := geom.LineGeom[0].Vertices
	if verts[0].M == nil || (*verts[0].M)["speed"].Primitive.F64 != 55 {
		t.Errorf("vertex 0 speed = %+v, want 55", verts[0].M)
	}
	if verts[1].M == nil || (*verts[1].M)["speed"].Primitive.F64 != 0 {
		t.Errorf("vertex 1 should decode a zero-filled speed, got %+v", verts[1].M)
	}
}

// SPEC_FULL.md 4.4 case 2: an entire line with no M-values of its own, in a
// feature where another line does have them, gets every vertex fully
// shape-zero-filled.
func TestLineMValuesCaseTwoWholeLineZeroFill(t *testing.T) {
	mShape := shape.Shape{"speed": {Kind: shape.KindPrimitive, Primitive: shape.PrimF64}}
	m1 := shape.Value{"speed": shape.F64(30)}
	lineWithM := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 0, Y: 0, M: &m1},
		{X: 1, Y: 1, M: &m1},
	}}
	lineWithoutM := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 100, Y: 100},
		{X: 101, Y: 101},
	}}
	f := NewLinesFeature(nil, propsFor("road network"),
		[]geometry.LineWithOffset{lineWithM, lineWithoutM}, nil)

	of := roundTrip(t, f, &mShape)
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.LineGeom) != 2 {
		t.Fatalf("got %d lines, want 2", len(geom.LineGeom))
	}
	for i, v := range geom.LineGeom[1].Vertices {
		if v.M == nil {
			t.Fatalf("vertex %d of the M-less line should still decode an M-value record", i)
		}
		if got := (*v.M)["speed"].Primitive.F64; got != 0 {
			t.Errorf("vertex %d speed = %v, want 0", i, got)
		}
	}
}

// Lines/Polygons singleness only elides the leading count field; the
// Indices-column lookup always happens, unlike Points/Points3D where single
// bypasses it entirely (SPEC_FULL.md 4.5).
func TestSingleLineStillUsesIndicesColumn(t *testing.T) {
	line := geometry.LineWithOffset{Vertices: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	f := NewLinesFeature(nil, propsFor("single road"), []geometry.LineWithOffset{line}, nil)

	of := roundTrip(t, f, nil)
	if !of.single {
		t.Fatal("expected single flag set for one-line feature")
	}
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.LineGeom) != 1 || len(geom.LineGeom[0].Vertices) != 2 {
		t.Fatalf("got %+v, want one 2-vertex line", geom.LineGeom)
	}
}

func TestLineWithOffset(t *testing.T) {
	line := geometry.LineWithOffset{Offset: 2.5, Vertices: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	f := NewLinesFeature(nil, propsFor("dashed"), []geometry.LineWithOffset{line, line}, nil)

	of := roundTrip(t, f, nil)
	if !of.hasOffsets {
		t.Fatal("expected hasOffsets true")
	}
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	for i, l := range geom.LineGeom {
		if l.Offset != 2.5 {
			t.Errorf("line %d offset = %v, want 2.5", i, l.Offset)
		}
	}
}

func TestPolygonWithIndicesAndTessellation(t *testing.T) {
	outer := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	hole := geometry.LineWithOffset{Vertices: []geometry.Point{
		{X: 3, Y: 3}, {X: 6, Y: 3}, {X: 6, Y: 6},
	}}
	poly := geometry.Polygon{outer, hole}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	tess := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	f := NewPolygonsFeature(nil, propsFor("block with courtyard"),
		[]geometry.Polygon{poly}, nil, indices, tess)

	of := roundTrip(t, f, nil)
	geom, err := of.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if len(geom.PolyGeom) != 1 || len(geom.PolyGeom[0]) != 2 {
		t.Fatalf("got %+v, want one polygon with 2 rings", geom.PolyGeom)
	}
	if len(geom.PolyGeom[0][1].Vertices) != 3 {
		t.Errorf("hole ring has %d vertices, want 3", len(geom.PolyGeom[0][1].Vertices))
	}

	gotIndices, err := of.Indices()
	if err != nil {
		t.Fatalf("Indices: %v", err)
	}
	if len(gotIndices) != len(indices) {
		t.Fatalf("got %d indices, want %d", len(gotIndices), len(indices))
	}
	for i, v := range indices {
		if gotIndices[i] != v {
			t.Errorf("index %d = %d, want %d", i, gotIndices[i], v)
		}
	}

	gotTess, err := of.Tessellation()
	if err != nil {
		t.Fatalf("Tessellation: %v", err)
	}
	if len(gotTess) != len(tess) {
		t.Fatalf("got %d tessellation verts, want %d", len(gotTess), len(tess))
	}
}

func TestFeatureIDRoundTrip(t *testing.T) {
	id := uint64(42)
	f := NewPointsFeature(&id, propsFor("named"), []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, nil)

	of := roundTrip(t, f, nil)
	if of.ID == nil || *of.ID != id {
		t.Errorf("id = %v, want %d", of.ID, id)
	}
}

func TestPropertiesRoundTrip(t *testing.T) {
	f := NewPointsFeature(nil, propsFor("Shelbyville"), []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, nil)

	of := roundTrip(t, f, nil)
	if of.Properties["name"].Primitive.Str != "Shelbyville" {
		t.Errorf("name = %q, want Shelbyville", of.Properties["name"].Primitive.Str)
	}
}

func TestUnknownFeatureTypeErrors(t *testing.T) {
	if _, err := TypeFromU64(99); err == nil {
		t.Fatal("expected an error for an unrecognized feature type code")
	}
}

func TestExtentFromCodeFallback(t *testing.T) {
	if got := ExtentFromCode(99); got != Extent512 {
		t.Errorf("unrecognized extent code = %v, want fallback Extent512", got)
	}
	if got := ExtentFromCode(3); got != Extent4096 {
		t.Errorf("code 3 = %v, want Extent4096", got)
	}
}

func TestEncodeDecodeOffsetRoundTrip(t *testing.T) {
	cases := []float64{0, 1.5, 2.25, 100.001}
	for _, v := range cases {
		got := DecodeOffset(EncodeOffset(v))
		if abs(got-v) > 1e-3 {
			t.Errorf("offset round trip for %v: got %v", v, got)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
