package column

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/shape"
)

func TestEncodeDecodeShapeRoundTrip(t *testing.T) {
	s := shape.Shape{
		"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
		"pop":  {Kind: shape.KindPrimitive, Primitive: shape.PrimU64},
		"tags": {Kind: shape.KindArray, Elem: shape.ArrayElem{Prim: shape.PrimString}},
		"addr": {Kind: shape.KindNested, Nested: shape.Shape{
			"city": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
			"zip":  {Kind: shape.KindPrimitive, Primitive: shape.PrimU64},
		}},
	}

	w := NewWriter()
	idx := EncodeShape(s, w)

	r, err := Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	got, err := DecodeShape(idx, r)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}

	if len(got) != len(s) {
		t.Fatalf("field count = %d, want %d", len(got), len(s))
	}
	if got["name"].Primitive != shape.PrimString {
		t.Errorf("name primitive = %v, want PrimString", got["name"].Primitive)
	}
	if got["tags"].Kind != shape.KindArray || got["tags"].Elem.Prim != shape.PrimString {
		t.Errorf("tags = %+v, want string array", got["tags"])
	}
	if got["addr"].Kind != shape.KindNested || got["addr"].Nested["city"].Primitive != shape.PrimString {
		t.Errorf("addr = %+v, want nested shape with city:string", got["addr"])
	}
}

func TestEncodeDecodeShapeWithNestedArray(t *testing.T) {
	s := shape.Shape{
		"points": {Kind: shape.KindArray, Elem: shape.ArrayElem{
			IsNested: true,
			Fields: map[string]shape.PrimKind{
				"x": shape.PrimF64,
				"y": shape.PrimF64,
			},
		}},
	}
	w := NewWriter()
	idx := EncodeShape(s, w)
	r, err := Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	got, err := DecodeShape(idx, r)
	if err != nil {
		t.Fatalf("DecodeShape: %v", err)
	}
	elem := got["points"].Elem
	if !elem.IsNested || elem.Fields["x"] != shape.PrimF64 || elem.Fields["y"] != shape.PrimF64 {
		t.Errorf("points elem = %+v, want nested x,y:f64", elem)
	}
}

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	s := shape.Shape{
		"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
		"pop":  {Kind: shape.KindPrimitive, Primitive: shape.PrimF64},
		"tags": {Kind: shape.KindArray, Elem: shape.ArrayElem{Prim: shape.PrimString}},
	}
	v := shape.Value{
		"name": shape.String("Springfield"),
		"pop":  shape.U64(30000), // numeric promotion u64 -> f64
		"tags": {Kind: shape.KindArray, Array: []shape.ValuePrimitiveType{
			{Primitive: shape.PrimitiveValue{Kind: shape.PrimString, Str: "capital"}},
			{Primitive: shape.PrimitiveValue{Kind: shape.PrimString, Str: "county-seat"}},
		}},
	}

	w := NewWriter()
	valIdx, err := EncodeValue(v, s, w)
	if err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}

	r, err := Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	got, err := DecodeValue(valIdx, s, r)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if got["name"].Primitive.Str != "Springfield" {
		t.Errorf("name = %q, want Springfield", got["name"].Primitive.Str)
	}
	if got["pop"].Primitive.F64 != 30000 {
		t.Errorf("pop = %v, want 30000", got["pop"].Primitive.F64)
	}
	if len(got["tags"].Array) != 2 || got["tags"].Array[0].Primitive.Str != "capital" {
		t.Errorf("tags = %+v, want [capital, county-seat]", got["tags"].Array)
	}
}

func TestEncodeValueMissingKeyIsFatal(t *testing.T) {
	s := shape.Shape{
		"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
		"pop":  {Kind: shape.KindPrimitive, Primitive: shape.PrimU64},
	}
	v := shape.Value{"name": shape.String("Springfield")}

	w := NewWriter()
	if _, err := EncodeValue(v, s, w); err == nil {
		t.Fatal("EncodeValue with a key missing from the shape's value should fail")
	}
}

func TestDecodeValueZeroFillsOnNarrowerPayload(t *testing.T) {
	narrow := shape.Shape{
		"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
	}
	wide := shape.Shape{
		"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString},
		"pop":  {Kind: shape.KindPrimitive, Primitive: shape.PrimU64},
	}

	w := NewWriter()
	idx, err := EncodeValue(shape.Value{"name": shape.String("Shelbyville")}, narrow, w)
	if err != nil {
		t.Fatalf("EncodeValue: %v", err)
	}

	r, err := Decode(w.Encode())
	if err != nil {
		t.Fatalf("decode column cache: %v", err)
	}
	got, err := DecodeValue(idx, wide, r)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	if got["name"].Primitive.Str != "Shelbyville" {
		t.Errorf("name = %q, want Shelbyville", got["name"].Primitive.Str)
	}
	if got["pop"].Primitive.U64 != 0 {
		t.Errorf("pop = %d, want zero-filled 0", got["pop"].Primitive.U64)
	}
}

func TestEncodeShapeDedupesIdenticalShapes(t *testing.T) {
	s := shape.Shape{"name": {Kind: shape.KindPrimitive, Primitive: shape.PrimString}}
	w := NewWriter()
	idx1 := EncodeShape(s, w)
	idx2 := EncodeShape(s, w)
	if idx1 != idx2 {
		t.Errorf("identical shapes got distinct indices %d and %d, want dedup", idx1, idx2)
	}
}
