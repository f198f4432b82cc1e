package shape

// PrimitiveValue is a single primitive leaf value tagged with its kind.
// Only the field matching Kind is meaningful.
type PrimitiveValue struct {
	Kind PrimKind
	Str  string
	U64  uint64
	I64  int64
	F32  float32
	F64  float64
	Bool bool
}

// ValuePrimitiveType is one element of an Array ValueType: either a bare
// primitive or a flat object of primitive-typed fields.
type ValuePrimitiveType struct {
	IsNested bool
	Primitive PrimitiveValue
	Nested   map[string]PrimitiveValue
}

// ValueType is one Value field's payload: a primitive, an array of
// ValuePrimitiveType, or a fully nested Value.
type ValueType struct {
	Kind      TypeKind
	Primitive PrimitiveValue
	Array     []ValuePrimitiveType
	Nested    Value
}

// Value is a nested attribute payload conforming to some Shape. Like Shape,
// field iteration for wire encoding always follows the shape's sorted key
// order, not this map's (undefined) iteration order.
type Value map[string]ValueType

// String constructs a ValueType for a PrimString leaf.
func String(s string) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimString, Str: s}}
}

// U64 constructs a ValueType for a PrimU64 leaf.
func U64(v uint64) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimU64, U64: v}}
}

// I64 constructs a ValueType for a PrimI64 leaf.
func I64(v int64) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimI64, I64: v}}
}

// F32 constructs a ValueType for a PrimF32 leaf.
func F32(v float32) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimF32, F32: v}}
}

// F64 constructs a ValueType for a PrimF64 leaf.
func F64(v float64) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimF64, F64: v}}
}

// Bool constructs a ValueType for a PrimBool leaf.
func Bool(v bool) ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimBool, Bool: v}}
}

// Null constructs a ValueType for a PrimNull leaf (encodes to nothing).
func Null() ValueType {
	return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: PrimNull}}
}

// ZeroValue builds a Value that conforms to s with every field set to its
// kind's zero value. Every vertex of a line that carries no M-values at
// all, in a feature where another line does (SPEC_FULL.md 4.4's second
// default-fill case), is encoded as this rather than as an empty Value{} so
// that EncodeValue's
// missing-key check (column.EncodeValue) never fires.
func ZeroValue(s Shape) Value {
	v := make(Value, len(s))
	for key, st := range s {
		v[key] = zeroValueType(st)
	}
	return v
}

func zeroValueType(st ShapeType) ValueType {
	switch st.Kind {
	case KindArray:
		return ValueType{Kind: KindArray, Array: nil}
	case KindNested:
		return ValueType{Kind: KindNested, Nested: ZeroValue(st.Nested)}
	default:
		return ValueType{Kind: KindPrimitive, Primitive: PrimitiveValue{Kind: st.Primitive}}
	}
}
