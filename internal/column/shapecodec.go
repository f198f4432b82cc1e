package column

import (
	"sort"

	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
)

// EncodeShape serializes a Shape tree to the flat stream form (spec §4.3)
// and returns its Shapes-column index.
//
// The stream is built so that ShapeCursor's back-to-front Pop matches the
// original's "read the header, then read N fields" order: each node's own
// ShapePair is appended *after* its children, so the last value appended for
// any subtree is that subtree's own header. Field order within an object
// does not need to match anything on decode (Shape is an unordered map), so
// fields are appended here in Keys()'s sorted order purely for determinism.
func EncodeShape(s shape.Shape, w *Writer) uint64 {
	var stream []uint64
	appendShape(&stream, s, w)
	return w.AddShapes(stream)
}

func appendShape(stream *[]uint64, s shape.Shape, w *Writer) {
	keys := s.Keys()
	for _, k := range keys {
		appendShapeType(stream, s[k], w)
		*stream = append(*stream, w.AddString(k))
	}
	*stream = append(*stream, shape.ShapePair{Kind: shape.PairObject, CountOrCol: uint64(len(keys))}.Encode())
}

func appendShapeType(stream *[]uint64, st shape.ShapeType, w *Writer) {
	switch st.Kind {
	case shape.KindPrimitive:
		*stream = append(*stream, shape.ShapePair{Kind: shape.PairPrimitive, CountOrCol: uint64(st.Primitive)}.Encode())
	case shape.KindArray:
		appendArrayElemShape(stream, st.Elem, w)
		*stream = append(*stream, shape.ShapePair{Kind: shape.PairArray, CountOrCol: 0}.Encode())
	case shape.KindNested:
		appendShape(stream, st.Nested, w)
	}
}

func appendArrayElemShape(stream *[]uint64, elem shape.ArrayElem, w *Writer) {
	if !elem.IsNested {
		*stream = append(*stream, shape.ShapePair{Kind: shape.PairPrimitive, CountOrCol: uint64(elem.Prim)}.Encode())
		return
	}
	synthetic := shape.Shape{}
	for k, pk := range elem.Fields {
		synthetic[k] = shape.ShapeType{Kind: shape.KindPrimitive, Primitive: pk}
	}
	appendShape(stream, synthetic, w)
}

// DecodeShape resolves a Shapes-column index back into a Shape tree.
func DecodeShape(idx uint64, r *Reader) (shape.Shape, error) {
	stream, err := r.GetShapes(idx)
	if err != nil {
		return nil, err
	}
	cur := shape.NewShapeCursor(stream)
	v, ok := cur.Pop()
	if !ok {
		return shape.Shape{}, nil
	}
	pair := shape.DecodeShapePair(v)
	if pair.Kind != shape.PairObject {
		return nil, &ovterr.StreamDesync{Expected: "object", Got: "other shape kind at top level"}
	}
	return decodeShapeFields(cur, pair.CountOrCol, r)
}

func decodeShapeFields(cur *shape.ShapeCursor, count uint64, r *Reader) (shape.Shape, error) {
	result := shape.Shape{}
	for i := uint64(0); i < count; i++ {
		keyIdx, ok := cur.Pop()
		if !ok {
			return nil, &ovterr.StreamDesync{Expected: "field key", Got: "end of stream"}
		}
		key, err := r.GetString(keyIdx)
		if err != nil {
			return nil, err
		}
		ft, err := decodeShapeType(cur, r)
		if err != nil {
			return nil, err
		}
		result[key] = ft
	}
	return result, nil
}

func decodeShapeType(cur *shape.ShapeCursor, r *Reader) (shape.ShapeType, error) {
	v, ok := cur.Pop()
	if !ok {
		return shape.ShapeType{}, &ovterr.StreamDesync{Expected: "shape node", Got: "end of stream"}
	}
	pair := shape.DecodeShapePair(v)
	switch pair.Kind {
	case shape.PairPrimitive:
		return shape.ShapeType{Kind: shape.KindPrimitive, Primitive: shape.PrimKind(pair.CountOrCol)}, nil
	case shape.PairArray:
		elem, err := decodeArrayElemShape(cur, r)
		if err != nil {
			return shape.ShapeType{}, err
		}
		return shape.ShapeType{Kind: shape.KindArray, Elem: elem}, nil
	case shape.PairObject:
		nested, err := decodeShapeFields(cur, pair.CountOrCol, r)
		if err != nil {
			return shape.ShapeType{}, err
		}
		return shape.ShapeType{Kind: shape.KindNested, Nested: nested}, nil
	}
	return shape.ShapeType{}, &ovterr.StreamDesync{Expected: "known ShapePair kind", Got: "unrecognized kind"}
}

func decodeArrayElemShape(cur *shape.ShapeCursor, r *Reader) (shape.ArrayElem, error) {
	v, ok := cur.Pop()
	if !ok {
		return shape.ArrayElem{}, &ovterr.StreamDesync{Expected: "array element type", Got: "end of stream"}
	}
	pair := shape.DecodeShapePair(v)
	switch pair.Kind {
	case shape.PairPrimitive:
		return shape.ArrayElem{Prim: shape.PrimKind(pair.CountOrCol)}, nil
	case shape.PairObject:
		fields := make(map[string]shape.PrimKind, pair.CountOrCol)
		for i := uint64(0); i < pair.CountOrCol; i++ {
			keyIdx, ok := cur.Pop()
			if !ok {
				return shape.ArrayElem{}, &ovterr.StreamDesync{Expected: "array element field key", Got: "end of stream"}
			}
			key, err := r.GetString(keyIdx)
			if err != nil {
				return shape.ArrayElem{}, err
			}
			ft, err := decodeShapeType(cur, r)
			if err != nil {
				return shape.ArrayElem{}, err
			}
			if ft.Kind != shape.KindPrimitive {
				return shape.ArrayElem{}, &ovterr.StreamDesync{Expected: "primitive array element field", Got: "nested type"}
			}
			fields[key] = ft.Primitive
		}
		return shape.ArrayElem{IsNested: true, Fields: fields}, nil
	}
	return shape.ArrayElem{}, &ovterr.StreamDesync{Expected: "known ShapePair kind", Got: "unrecognized kind"}
}

// EncodeValue serializes v against s (spec §4.3) and returns its
// Shapes-column index. Encoding is fatal if v is missing a key s declares —
// unlike decode, which zero-fills, encode must never silently drop data a
// reader would expect to find.
func EncodeValue(v shape.Value, s shape.Shape, w *Writer) (uint64, error) {
	var stream []uint64
	if err := appendValueForShape(&stream, v, s, w); err != nil {
		return 0, err
	}
	return w.AddShapes(stream), nil
}

func appendValueForShape(stream *[]uint64, v shape.Value, s shape.Shape, w *Writer) error {
	for _, key := range s.Keys() {
		vt, ok := v[key]
		if !ok {
			return &ovterr.SchemaMismatch{Key: key, Reason: "value missing a key its shape declares"}
		}
		if err := appendValueForType(stream, vt, s[key], w); err != nil {
			return err
		}
	}
	return nil
}

func appendValueForType(stream *[]uint64, vt shape.ValueType, st shape.ShapeType, w *Writer) error {
	if vt.Kind != st.Kind {
		return &ovterr.SchemaMismatch{Reason: "value kind disagrees with its shape"}
	}
	switch st.Kind {
	case shape.KindPrimitive:
		idx, has, err := encodePrimitive(w, st.Primitive, vt.Primitive)
		if err != nil {
			return err
		}
		if has {
			*stream = append(*stream, idx)
		}
		return nil
	case shape.KindArray:
		*stream = append(*stream, uint64(len(vt.Array)))
		for _, elem := range vt.Array {
			if err := appendArrayElemValue(stream, elem, st.Elem, w); err != nil {
				return err
			}
		}
		return nil
	case shape.KindNested:
		return appendValueForShape(stream, vt.Nested, st.Nested, w)
	}
	return &ovterr.SchemaMismatch{Reason: "unknown shape kind"}
}

func appendArrayElemValue(stream *[]uint64, elem shape.ValuePrimitiveType, declared shape.ArrayElem, w *Writer) error {
	if declared.IsNested != elem.IsNested {
		return &ovterr.SchemaMismatch{Reason: "array element kind disagrees with its shape"}
	}
	if !declared.IsNested {
		idx, has, err := encodePrimitive(w, declared.Prim, elem.Primitive)
		if err != nil {
			return err
		}
		if has {
			*stream = append(*stream, idx)
		}
		return nil
	}
	keys := make([]string, 0, len(declared.Fields))
	for k := range declared.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pv, ok := elem.Nested[k]
		if !ok {
			return &ovterr.SchemaMismatch{Key: k, Reason: "array element missing a field its shape declares"}
		}
		idx, has, err := encodePrimitive(w, declared.Fields[k], pv)
		if err != nil {
			return err
		}
		if has {
			*stream = append(*stream, idx)
		}
	}
	return nil
}

// encodePrimitive writes pv to the column declared's kind resolves to,
// applying the numeric promotion lattice (spec §4.1) when pv's own kind is a
// lower-ranked numeric type than declared. has is false only for PrimNull,
// which consumes no stream slot.
func encodePrimitive(w *Writer, declared shape.PrimKind, pv shape.PrimitiveValue) (uint64, bool, error) {
	switch declared {
	case shape.PrimNull:
		return 0, false, nil
	case shape.PrimString:
		if pv.Kind != shape.PrimString {
			return 0, false, &ovterr.SchemaMismatch{Reason: "expected a string value"}
		}
		return w.AddString(pv.Str), true, nil
	case shape.PrimBool:
		if pv.Kind != shape.PrimBool {
			return 0, false, &ovterr.SchemaMismatch{Reason: "expected a bool value"}
		}
		v := uint64(0)
		if pv.Bool {
			v = 1
		}
		return w.AddU64(v), true, nil
	case shape.PrimU64:
		if pv.Kind != shape.PrimU64 {
			return 0, false, &ovterr.SchemaMismatch{Reason: "expected a u64 value"}
		}
		return w.AddU64(pv.U64), true, nil
	case shape.PrimI64:
		switch pv.Kind {
		case shape.PrimU64:
			return w.AddI64(int64(pv.U64)), true, nil
		case shape.PrimI64:
			return w.AddI64(pv.I64), true, nil
		}
		return 0, false, &ovterr.SchemaMismatch{Reason: "expected an i64-compatible value"}
	case shape.PrimF32:
		switch pv.Kind {
		case shape.PrimU64:
			return w.AddF32(float32(pv.U64)), true, nil
		case shape.PrimI64:
			return w.AddF32(float32(pv.I64)), true, nil
		case shape.PrimF32:
			return w.AddF32(pv.F32), true, nil
		}
		return 0, false, &ovterr.SchemaMismatch{Reason: "expected an f32-compatible value"}
	case shape.PrimF64:
		switch pv.Kind {
		case shape.PrimU64:
			return w.AddF64(float64(pv.U64)), true, nil
		case shape.PrimI64:
			return w.AddF64(float64(pv.I64)), true, nil
		case shape.PrimF32:
			return w.AddF64(float64(pv.F32)), true, nil
		case shape.PrimF64:
			return w.AddF64(pv.F64), true, nil
		}
		return 0, false, &ovterr.SchemaMismatch{Reason: "expected an f64-compatible value"}
	}
	return 0, false, &ovterr.SchemaMismatch{Reason: "unknown primitive kind"}
}

// DecodeValue resolves a Shapes-column index back into a Value conforming to
// s. Fields the stream runs out of before s is exhausted decode to their
// kind's zero value (spec §4.3) rather than erroring — this is the
// mechanism by which an older, narrower-shaped payload survives a later
// layer-wide shape merge.
func DecodeValue(idx uint64, s shape.Shape, r *Reader) (shape.Value, error) {
	stream, err := r.GetShapes(idx)
	if err != nil {
		return nil, err
	}
	cur := shape.NewValueCursor(stream)
	return decodeValueForShape(cur, s, r)
}

func decodeValueForShape(cur *shape.ValueCursor, s shape.Shape, r *Reader) (shape.Value, error) {
	result := shape.Value{}
	for _, key := range s.Keys() {
		vt, err := decodeValueForType(cur, s[key], r)
		if err != nil {
			return nil, err
		}
		result[key] = vt
	}
	return result, nil
}

func decodeValueForType(cur *shape.ValueCursor, st shape.ShapeType, r *Reader) (shape.ValueType, error) {
	switch st.Kind {
	case shape.KindPrimitive:
		pv, err := decodePrimitive(r, cur, st.Primitive)
		if err != nil {
			return shape.ValueType{}, err
		}
		return shape.ValueType{Kind: shape.KindPrimitive, Primitive: pv}, nil
	case shape.KindArray:
		count, _ := cur.Pop()
		elems := make([]shape.ValuePrimitiveType, 0, count)
		for i := uint64(0); i < count; i++ {
			elem, err := decodeArrayElemValue(cur, st.Elem, r)
			if err != nil {
				return shape.ValueType{}, err
			}
			elems = append(elems, elem)
		}
		return shape.ValueType{Kind: shape.KindArray, Array: elems}, nil
	case shape.KindNested:
		nested, err := decodeValueForShape(cur, st.Nested, r)
		if err != nil {
			return shape.ValueType{}, err
		}
		return shape.ValueType{Kind: shape.KindNested, Nested: nested}, nil
	}
	return shape.ValueType{}, &ovterr.StreamDesync{Expected: "known shape kind", Got: "unrecognized kind"}
}

func decodeArrayElemValue(cur *shape.ValueCursor, declared shape.ArrayElem, r *Reader) (shape.ValuePrimitiveType, error) {
	if !declared.IsNested {
		pv, err := decodePrimitive(r, cur, declared.Prim)
		if err != nil {
			return shape.ValuePrimitiveType{}, err
		}
		return shape.ValuePrimitiveType{Primitive: pv}, nil
	}
	keys := make([]string, 0, len(declared.Fields))
	for k := range declared.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	nested := make(map[string]shape.PrimitiveValue, len(keys))
	for _, k := range keys {
		pv, err := decodePrimitive(r, cur, declared.Fields[k])
		if err != nil {
			return shape.ValuePrimitiveType{}, err
		}
		nested[k] = pv
	}
	return shape.ValuePrimitiveType{IsNested: true, Nested: nested}, nil
}

func decodePrimitive(r *Reader, cur *shape.ValueCursor, declared shape.PrimKind) (shape.PrimitiveValue, error) {
	if declared == shape.PrimNull {
		return shape.PrimitiveValue{Kind: shape.PrimNull}, nil
	}
	idx, ok := cur.Pop()
	if !ok {
		return shape.PrimitiveValue{Kind: declared}, nil
	}
	switch declared {
	case shape.PrimString:
		s, err := r.GetString(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimString, Str: s}, nil
	case shape.PrimBool:
		v, err := r.GetU64(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimBool, Bool: v != 0}, nil
	case shape.PrimU64:
		v, err := r.GetU64(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimU64, U64: v}, nil
	case shape.PrimI64:
		v, err := r.GetI64(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimI64, I64: v}, nil
	case shape.PrimF32:
		v, err := r.GetF32(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimF32, F32: v}, nil
	case shape.PrimF64:
		v, err := r.GetF64(idx)
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimF64, F64: v}, nil
	}
	return shape.PrimitiveValue{}, &ovterr.StreamDesync{Expected: "known primitive kind", Got: "unrecognized kind"}
}
