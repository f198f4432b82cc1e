// Package shape implements the self-describing nested schema ("Shape") and
// matching nested payload ("Value") used for layer properties and per-vertex
// M-values. This package holds the pure data model and the shape-merge
// rules; it has no dependency on the column cache or the wire format — the
// cache-backed encode/decode of a Value against a Shape lives in
// internal/column, which imports this package, so that geometry (which
// needs Value for M-values) and column (which needs both Shape/Value and
// geometry) can both depend on shape without a cycle.
package shape

import (
	"sort"

	"github.com/tilekiln/ovtile/internal/ovterr"
)

// PrimKind is the closed set of primitive value kinds a Shape leaf can
// declare.
type PrimKind uint8

const (
	PrimString PrimKind = iota
	PrimU64
	PrimI64
	PrimF32
	PrimF64
	PrimBool
	PrimNull
)

// isNumeric reports whether the kind participates in the numeric promotion
// lattice U64 < I64 < F32 < F64.
func (k PrimKind) isNumeric() bool {
	switch k {
	case PrimU64, PrimI64, PrimF32, PrimF64:
		return true
	}
	return false
}

// numericRank orders the numeric lattice for promotion comparisons; higher
// wins. Non-numeric kinds are not comparable by rank.
func (k PrimKind) numericRank() int {
	switch k {
	case PrimU64:
		return 0
	case PrimI64:
		return 1
	case PrimF32:
		return 2
	case PrimF64:
		return 3
	}
	return -1
}

// TypeKind discriminates a ShapeType's three forms.
type TypeKind uint8

const (
	KindPrimitive TypeKind = iota
	KindArray
	KindNested
)

// ShapeType is one Shape field's declared type: a bare primitive, a
// homogeneous array (of a primitive or of a flat nested-primitive object),
// or a fully nested Shape.
type ShapeType struct {
	Kind      TypeKind
	Primitive PrimKind          // valid when Kind == KindPrimitive
	Elem      ArrayElem         // valid when Kind == KindArray
	Nested    Shape             // valid when Kind == KindNested
}

// ArrayElem is an array's single element type: either a bare primitive or a
// flat object of primitive-typed fields (one level of nesting only, per
// spec §3: "nested primitive objects ... must themselves have identical
// key/type signatures across elements").
type ArrayElem struct {
	IsNested bool
	Prim     PrimKind
	Fields   map[string]PrimKind
}

// Shape is a layer-level (or M-value-level) schema: a set of named,
// independently typed fields. Field iteration for encoding is always in
// sorted key order (see SPEC_FULL.md 4.1) so wire output is deterministic;
// Merge, which writes no wire output, ranges over the map directly.
type Shape map[string]ShapeType

// Keys returns the shape's field names in the deterministic (sorted) order
// used by every wire encode site.
func (s Shape) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge folds other into s in place, applying the numeric promotion lattice
// to disagreeing numeric primitives (array element primitives included),
// requiring non-numeric primitives and array element kinds to agree, and
// merging nested shapes key by key. Returns a
// SchemaMismatch if a field's types are fundamentally incompatible (e.g. a
// string in one feature and a number in another for the same key).
func (s Shape) Merge(other Shape) error {
	for key, otherType := range other {
		existing, ok := s[key]
		if !ok {
			s[key] = otherType
			continue
		}
		merged, err := mergeType(key, existing, otherType)
		if err != nil {
			return err
		}
		s[key] = merged
	}
	return nil
}

func mergeType(key string, a, b ShapeType) (ShapeType, error) {
	if a.Kind != b.Kind {
		return ShapeType{}, &ovterr.SchemaMismatch{Key: key, Reason: "incompatible shape kinds"}
	}
	switch a.Kind {
	case KindPrimitive:
		return mergePrimitiveType(key, a, b)
	case KindArray:
		return mergeArrayType(key, a, b)
	case KindNested:
		merged := Shape{}
		for k, v := range a.Nested {
			merged[k] = v
		}
		if err := merged.Merge(b.Nested); err != nil {
			return ShapeType{}, err
		}
		return ShapeType{Kind: KindNested, Nested: merged}, nil
	}
	return ShapeType{}, &ovterr.SchemaMismatch{Key: key, Reason: "unknown shape kind"}
}

func mergePrimitiveType(key string, a, b ShapeType) (ShapeType, error) {
	if a.Primitive == b.Primitive {
		return a, nil
	}
	if a.Primitive.isNumeric() && b.Primitive.isNumeric() {
		if b.Primitive.numericRank() > a.Primitive.numericRank() {
			return b, nil
		}
		return a, nil
	}
	return ShapeType{}, &ovterr.SchemaMismatch{
		Key:    key,
		Reason: "non-numeric primitive types disagree",
	}
}

func mergeArrayType(key string, a, b ShapeType) (ShapeType, error) {
	if a.Elem.IsNested != b.Elem.IsNested {
		return ShapeType{}, &ovterr.SchemaMismatch{Key: key, Reason: "array element kinds disagree"}
	}
	if !a.Elem.IsNested {
		primShape := ShapeType{Kind: KindPrimitive, Primitive: a.Elem.Prim}
		otherShape := ShapeType{Kind: KindPrimitive, Primitive: b.Elem.Prim}
		merged, err := mergePrimitiveType(key, primShape, otherShape)
		if err != nil {
			return ShapeType{}, err
		}
		return ShapeType{Kind: KindArray, Elem: ArrayElem{Prim: merged.Primitive}}, nil
	}
	fields := make(map[string]PrimKind, len(a.Elem.Fields))
	for k, v := range a.Elem.Fields {
		fields[k] = v
	}
	for k, v := range b.Elem.Fields {
		existing, ok := fields[k]
		if !ok {
			fields[k] = v
			continue
		}
		merged, err := mergePrimitiveType(key,
			ShapeType{Kind: KindPrimitive, Primitive: existing},
			ShapeType{Kind: KindPrimitive, Primitive: v})
		if err != nil {
			return ShapeType{}, err
		}
		fields[k] = merged.Primitive
	}
	return ShapeType{Kind: KindArray, Elem: ArrayElem{IsNested: true, Fields: fields}}, nil
}

// ShapeOf infers a Shape describing a single Value, used to merge a new
// feature's properties into a layer's shape (spec §4.6(a)) and a vertex's
// M-value into the layer's mShape.
func ShapeOf(v Value) Shape {
	s := Shape{}
	for key, vt := range v {
		s[key] = shapeTypeOf(vt)
	}
	return s
}

func shapeTypeOf(vt ValueType) ShapeType {
	switch vt.Kind {
	case KindPrimitive:
		return ShapeType{Kind: KindPrimitive, Primitive: vt.Primitive.Kind}
	case KindArray:
		if len(vt.Array) == 0 {
			return ShapeType{Kind: KindArray, Elem: ArrayElem{Prim: PrimNull}}
		}
		first := vt.Array[0]
		if !first.IsNested {
			return ShapeType{Kind: KindArray, Elem: ArrayElem{Prim: first.Primitive.Kind}}
		}
		fields := make(map[string]PrimKind, len(first.Nested))
		for k, v := range first.Nested {
			fields[k] = v.Kind
		}
		return ShapeType{Kind: KindArray, Elem: ArrayElem{IsNested: true, Fields: fields}}
	case KindNested:
		return ShapeType{Kind: KindNested, Nested: ShapeOf(vt.Nested)}
	}
	return ShapeType{Kind: KindPrimitive, Primitive: PrimNull}
}
