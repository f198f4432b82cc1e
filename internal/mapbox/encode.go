package mapbox

import (
	"fmt"

	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// EncodeLayer serializes name/extent/features as a legacy MVT layer (the
// supplemented Open→Mapbox export, SPEC_FULL.md §3), grounded directly on
// `write_layer(layer, mapbox_support)` in
// original_source/rust/mapbox/vector_layer.rs: feature bodies are written
// first while keys/values are collected into dedup tables, and the
// key/value table fields are only emitted once every feature has been
// encoded.
func EncodeLayer(name string, extent uint32, features []feature.BaseFeature) ([]byte, error) {
	keyIndex := map[string]uint64{}
	var keys []string
	valueIndex := map[string]uint64{}
	var values []shape.PrimitiveValue

	keyFor := func(k string) uint64 {
		if idx, ok := keyIndex[k]; ok {
			return idx
		}
		idx := uint64(len(keys))
		keys = append(keys, k)
		keyIndex[k] = idx
		return idx
	}
	valueFor := func(pv shape.PrimitiveValue) uint64 {
		dk := primitiveDedupKey(pv)
		if idx, ok := valueIndex[dk]; ok {
			return idx
		}
		idx := uint64(len(values))
		values = append(values, pv)
		valueIndex[dk] = idx
		return idx
	}

	var featureBytes [][]byte
	for _, f := range features {
		body, err := encodeFeature(f, keyFor, valueFor)
		if err != nil {
			return nil, err
		}
		featureBytes = append(featureBytes, body)
	}

	w := wire.NewWriter()
	w.WriteVarintField(layerFieldVersion, 2)
	w.WriteStringField(layerFieldName, name)
	for _, body := range featureBytes {
		w.WriteBytesField(layerFieldFeature, body)
	}
	for _, k := range keys {
		w.WriteStringField(layerFieldKey, k)
	}
	for _, v := range values {
		w.WriteBytesField(layerFieldValue, EncodeValue(v))
	}
	w.WriteVarintField(layerFieldExtent, uint64(extent))
	return w.Bytes(), nil
}

func primitiveDedupKey(pv shape.PrimitiveValue) string {
	switch pv.Kind {
	case shape.PrimString:
		return "s:" + pv.Str
	case shape.PrimF32:
		return fmt.Sprintf("f32:%x", pv.F32)
	case shape.PrimF64:
		return fmt.Sprintf("f64:%x", pv.F64)
	case shape.PrimI64:
		return fmt.Sprintf("i64:%d", pv.I64)
	case shape.PrimU64:
		return fmt.Sprintf("u64:%d", pv.U64)
	case shape.PrimBool:
		return fmt.Sprintf("b:%v", pv.Bool)
	}
	return "null"
}

// flattenProperties requires v to be a flat object of primitive leaves —
// legacy MVT properties have no array or nested-object representation, so
// a feature carrying either cannot be exported and is reported as an
// ovterr.InvalidGeometry (the closest-fitting existing error kind; the
// feature's geometry is fine but its shape is not legacy-representable).
func flattenProperties(v shape.Value) (map[string]shape.PrimitiveValue, error) {
	out := make(map[string]shape.PrimitiveValue, len(v))
	for k, vt := range v {
		if vt.Kind != shape.KindPrimitive {
			return nil, &ovterr.InvalidGeometry{Reason: "legacy export requires flat primitive properties: key " + k}
		}
		out[k] = vt.Primitive
	}
	return out, nil
}

func encodeFeature(f feature.BaseFeature, keyFor func(string) uint64, valueFor func(shape.PrimitiveValue) uint64) ([]byte, error) {
	flat, err := flattenProperties(f.Properties)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	var tagPairs []uint64
	for _, k := range keys {
		tagPairs = append(tagPairs, keyFor(k), valueFor(flat[k]))
	}

	var legacyType FeatureType
	var geomBytes []byte
	switch f.Type {
	case feature.Points:
		legacyType = Point
		geomBytes = encodePointCommands(f.PointGeom)
	case feature.Lines:
		legacyType = Line
		geomBytes = encodeLineCommands(f.LineGeom)
	case feature.Polygons:
		legacyType = Polygon
		if len(f.PolyGeom) > 1 {
			legacyType = MultiPolygon
		}
		geomBytes = encodePolygonCommands(f.PolyGeom, legacyType == MultiPolygon)
	default:
		return nil, &ovterr.UnknownFeatureType{Code: uint64(f.Type)}
	}

	w := wire.NewWriter()
	if f.ID != nil {
		w.WriteVarintField(featFieldID, *f.ID)
	}
	if len(tagPairs) > 0 {
		w.WritePackedVarintField(featFieldTags, tagPairs)
	}
	w.WriteVarintField(featFieldType, uint64(legacyType))
	w.WriteBytesField(featFieldGeometry, geomBytes)
	if len(f.Indices) > 0 {
		idxs := make([]uint64, len(f.Indices))
		for i, v := range f.Indices {
			idxs[i] = uint64(v)
		}
		w.WritePackedVarintField(featFieldIndices, idxs)
	}
	if len(f.Tessellation) > 0 {
		w.WriteBytesField(featFieldTessellation, encodePointCommands(f.Tessellation))
	}
	return w.Bytes(), nil
}

func appendCmd(vals *[]uint64, cmd, count uint64) {
	*vals = append(*vals, (count<<3)|cmd)
}

func appendDelta(vals *[]uint64, x, y *int32, p geometry.Point) {
	*vals = append(*vals, uint64(wire.Zigzag32(p.X-*x)), uint64(wire.Zigzag32(p.Y-*y)))
	*x, *y = p.X, p.Y
}

func encodePointCommands(pts []geometry.Point) []byte {
	if len(pts) == 0 {
		return nil
	}
	var x, y int32
	var vals []uint64
	appendCmd(&vals, cmdMoveTo, uint64(len(pts)))
	for _, p := range pts {
		appendDelta(&vals, &x, &y, p)
	}
	return wire.AppendPackedVarint(nil, vals)
}

func encodeLineCommands(lines []geometry.LineWithOffset) []byte {
	var vals []uint64
	var x, y int32
	for _, l := range lines {
		if len(l.Vertices) == 0 {
			continue
		}
		appendCmd(&vals, cmdMoveTo, 1)
		appendDelta(&vals, &x, &y, l.Vertices[0])
		if len(l.Vertices) > 1 {
			appendCmd(&vals, cmdLineTo, uint64(len(l.Vertices)-1))
			for _, p := range l.Vertices[1:] {
				appendDelta(&vals, &x, &y, p)
			}
		}
	}
	return wire.AppendPackedVarint(nil, vals)
}

// encodePolygonCommands is the reverse of classifyRings: each ring is
// written as a MoveTo + LineTo run followed by ClosePath, dropping the
// trailing vertex that duplicates the ring's start point (spec §4.6's
// explicit-closure convention is an OVT-side representation choice, not
// part of the MVT wire form). multiPoly emits a NextPoly marker ahead of
// every polygon after the first, the S2 extension this codec's decoder
// also understands.
func encodePolygonCommands(polys []geometry.Polygon, multiPoly bool) []byte {
	var vals []uint64
	var x, y int32
	for pi, poly := range polys {
		if multiPoly && pi > 0 {
			appendCmd(&vals, cmdNextPoly, 1)
		}
		for _, ring := range poly {
			verts := ring.Vertices
			if len(verts) > 1 && verts[0].Equal(verts[len(verts)-1]) {
				verts = verts[:len(verts)-1]
			}
			if len(verts) == 0 {
				continue
			}
			appendCmd(&vals, cmdMoveTo, 1)
			appendDelta(&vals, &x, &y, verts[0])
			if len(verts) > 1 {
				appendCmd(&vals, cmdLineTo, uint64(len(verts)-1))
				for _, p := range verts[1:] {
					appendDelta(&vals, &x, &y, p)
				}
			}
			appendCmd(&vals, cmdClosePath, 1)
		}
	}
	return wire.AppendPackedVarint(nil, vals)
}
