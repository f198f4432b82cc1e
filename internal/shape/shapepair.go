package shape

// ShapePair packs a shape-tree node's kind and count/column-id into a
// single stream value: (count_or_col << 2) | kind. kind is 0 for Array, 1
// for Object (a Shape/Value map), 2 for Primitive. For Object/Array the
// count is the field/element count; for Primitive it is the PrimKind code.
type ShapePair struct {
	Kind       uint64
	CountOrCol uint64
}

// Wire-level ShapePair kinds (spec §4.3), distinct from TypeKind: these are
// the three tags a ShapePair can carry on the flat Shapes-column stream.
const (
	PairArray     uint64 = 0
	PairObject    uint64 = 1
	PairPrimitive uint64 = 2
)

// Encode packs the pair into one stream value.
func (p ShapePair) Encode() uint64 {
	return (p.CountOrCol << 2) | p.Kind
}

// DecodeShapePair unpacks a stream value into its ShapePair.
func DecodeShapePair(v uint64) ShapePair {
	return ShapePair{Kind: v & 0b11, CountOrCol: v >> 2}
}
