// Package mapbox implements the legacy Mapbox Vector Tile (MVT) reader and
// the supplemented Open→MVT writer (spec §4.6, SPEC_FULL.md §3): a
// command-stream geometry codec, a flat key/value property table, and a
// ring-winding classifier used to recover polygon structure that MVT itself
// does not encode explicitly. Grounded on
// original_source/rust/mapbox/vector_feature.rs and
// original_source/rust/mapbox/vector_layer.rs.
package mapbox

import (
	"math"

	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Legacy value sub-message tags (spec §6), pinned to
// original_source/rust/mapbox/vector_feature.rs's Value ProtoRead/ProtoWrite
// impls: Null carries its own wire tag rather than being inferred from an
// empty buffer, and Float/Double both ride a varint payload (the raw IEEE
// bit pattern), not fixed32/fixed64.
const (
	valTagNull   ID = 0
	valTagString ID = 1
	valTagFloat  ID = 2
	valTagDouble ID = 3
	valTagInt    ID = 4
	valTagUInt   ID = 5
	valTagSInt   ID = 6
	valTagBool   ID = 7
)

// ID is a legacy value-tag field number.
type ID = int

// DecodeValue decodes one legacy value sub-message into a PrimitiveValue.
func DecodeValue(data []byte) (shape.PrimitiveValue, error) {
	r := wire.NewReader(data)
	if r.Pos() >= r.Len() {
		return shape.PrimitiveValue{Kind: shape.PrimNull}, nil
	}
	tag, typ, err := r.ReadTag()
	if err != nil {
		return shape.PrimitiveValue{}, err
	}
	switch tag {
	case valTagNull:
		if _, err := r.ReadVarint(); err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimNull}, nil
	case valTagString:
		s, err := r.ReadString()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimString, Str: s}, nil
	case valTagFloat:
		v, err := r.ReadVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimF32, F32: math.Float32frombits(uint32(v))}, nil
	case valTagDouble:
		v, err := r.ReadVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimF64, F64: math.Float64frombits(v)}, nil
	case valTagInt:
		v, err := r.ReadSVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimI64, I64: v}, nil
	case valTagUInt:
		v, err := r.ReadVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimU64, U64: v}, nil
	case valTagSInt:
		v, err := r.ReadSVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimI64, I64: v}, nil
	case valTagBool:
		v, err := r.ReadVarint()
		if err != nil {
			return shape.PrimitiveValue{}, err
		}
		return shape.PrimitiveValue{Kind: shape.PrimBool, Bool: v != 0}, nil
	}
	if err := r.Skip(typ); err != nil {
		return shape.PrimitiveValue{}, err
	}
	return shape.PrimitiveValue{}, &ovterr.MalformedInput{Reason: "unrecognized legacy value tag"}
}

// EncodeValue serializes a PrimitiveValue to a legacy value sub-message
// (the reverse of DecodeValue, used by the Open→Mapbox export path).
func EncodeValue(v shape.PrimitiveValue) []byte {
	w := wire.NewWriter()
	switch v.Kind {
	case shape.PrimNull:
		w.WriteVarintField(valTagNull, 0)
	case shape.PrimString:
		w.WriteStringField(valTagString, v.Str)
	case shape.PrimF32:
		w.WriteVarintField(valTagFloat, uint64(math.Float32bits(v.F32)))
	case shape.PrimF64:
		w.WriteVarintField(valTagDouble, math.Float64bits(v.F64))
	case shape.PrimI64:
		w.WriteSVarintField(valTagSInt, v.I64)
	case shape.PrimU64:
		w.WriteVarintField(valTagUInt, v.U64)
	case shape.PrimBool:
		b := uint64(0)
		if v.Bool {
			b = 1
		}
		w.WriteVarintField(valTagBool, b)
	}
	return w.Bytes()
}
