package feature

import (
	"github.com/tilekiln/ovtile/internal/codec"
	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// EncodeToCache pushes the feature's geometry into cache and returns the
// value stored in the feature's geometry-reference slot: the inline woven
// coordinate for a single Points/Points3D feature, or an Indices-column
// index for everything else (spec §4.5, SPEC_FULL.md 4.5).
func (f BaseFeature) EncodeToCache(cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	switch f.Type {
	case Points:
		return encodePointsToCache(f.PointGeom, cache, mShape)
	case Points3D:
		return encodePoints3DToCache(f.Point3D, cache, mShape)
	case Lines:
		return encodeLinesToCache(f.LineGeom, cache, mShape)
	case Lines3D:
		return encodeLines3DToCache(f.Line3D, cache, mShape)
	case Polygons:
		return encodePolysToCache(f.PolyGeom, cache, mShape)
	case Polygons3D:
		return encodePolys3DToCache(f.Poly3D, cache, mShape)
	}
	return 0, &ovterr.UnknownFeatureType{Code: uint64(f.Type)}
}

func encodePointsToCache(pts []geometry.Point, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	if len(pts) == 1 {
		p := pts[0]
		return uint64(weave2D(p.X, p.Y)), nil
	}
	indices := []uint32{uint32(cache.AddPoints(stripPointM(pts)))}
	hasM := false
	for _, p := range pts {
		if p.HasM() {
			hasM = true
			break
		}
	}
	if hasM && mShape != nil {
		for _, p := range pts {
			idx, err := encodeVertexM(p.M, *mShape, cache)
			if err != nil {
				return 0, err
			}
			indices = append(indices, uint32(idx))
		}
	}
	return cache.AddIndices(indices), nil
}

func encodePoints3DToCache(pts []geometry.Point3D, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	if len(pts) == 1 {
		p := pts[0]
		return weave3D(p.X, p.Y, p.Z), nil
	}
	indices := []uint32{uint32(cache.AddPoints3D(stripPoint3DM(pts)))}
	hasM := false
	for _, p := range pts {
		if p.HasM() {
			hasM = true
			break
		}
	}
	if hasM && mShape != nil {
		for _, p := range pts {
			idx, err := encodeVertexM(p.M, *mShape, cache)
			if err != nil {
				return 0, err
			}
			indices = append(indices, uint32(idx))
		}
	}
	return cache.AddIndices(indices), nil
}

func encodeLinesToCache(lines []geometry.LineWithOffset, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	featureHasM := false
	for _, l := range lines {
		if l.HasMValues() {
			featureHasM = true
			break
		}
	}
	var indices []uint32
	if len(lines) != 1 {
		indices = append(indices, uint32(len(lines)))
	}
	for _, l := range lines {
		if l.HasOffset() {
			indices = append(indices, EncodeOffset(l.Offset))
		}
		indices = append(indices, uint32(cache.AddPoints(stripPointM(l.Vertices))))
		if featureHasM {
			idxs, err := encodeLineMValues(l.Vertices, l.HasMValues(), mShape, cache)
			if err != nil {
				return 0, err
			}
			indices = append(indices, idxs...)
		}
	}
	return cache.AddIndices(indices), nil
}

func encodeLines3DToCache(lines []geometry.Line3DWithOffset, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	featureHasM := false
	for _, l := range lines {
		if l.HasMValues() {
			featureHasM = true
			break
		}
	}
	var indices []uint32
	if len(lines) != 1 {
		indices = append(indices, uint32(len(lines)))
	}
	for _, l := range lines {
		if l.HasOffset() {
			indices = append(indices, EncodeOffset(l.Offset))
		}
		indices = append(indices, uint32(cache.AddPoints3D(stripPoint3DM(l.Vertices))))
		if featureHasM {
			idxs, err := encodeLine3DMValues(l.Vertices, l.HasMValues(), mShape, cache)
			if err != nil {
				return 0, err
			}
			indices = append(indices, idxs...)
		}
	}
	return cache.AddIndices(indices), nil
}

func encodePolysToCache(polys []geometry.Polygon, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	featureHasM := false
	for _, poly := range polys {
		for _, l := range poly {
			if l.HasMValues() {
				featureHasM = true
			}
		}
	}
	var indices []uint32
	if len(polys) != 1 {
		indices = append(indices, uint32(len(polys)))
	}
	for _, poly := range polys {
		indices = append(indices, uint32(len(poly)))
		for _, l := range poly {
			if l.HasOffset() {
				indices = append(indices, EncodeOffset(l.Offset))
			}
			indices = append(indices, uint32(cache.AddPoints(stripPointM(l.Vertices))))
			if featureHasM {
				idxs, err := encodeLineMValues(l.Vertices, l.HasMValues(), mShape, cache)
				if err != nil {
					return 0, err
				}
				indices = append(indices, idxs...)
			}
		}
	}
	return cache.AddIndices(indices), nil
}

func encodePolys3DToCache(polys []geometry.Polygon3D, cache *column.Writer, mShape *shape.Shape) (uint64, error) {
	featureHasM := false
	for _, poly := range polys {
		for _, l := range poly {
			if l.HasMValues() {
				featureHasM = true
			}
		}
	}
	var indices []uint32
	if len(polys) != 1 {
		indices = append(indices, uint32(len(polys)))
	}
	for _, poly := range polys {
		indices = append(indices, uint32(len(poly)))
		for _, l := range poly {
			if l.HasOffset() {
				indices = append(indices, EncodeOffset(l.Offset))
			}
			indices = append(indices, uint32(cache.AddPoints3D(stripPoint3DM(l.Vertices))))
			if featureHasM {
				idxs, err := encodeLine3DMValues(l.Vertices, l.HasMValues(), mShape, cache)
				if err != nil {
					return 0, err
				}
				indices = append(indices, idxs...)
			}
		}
	}
	return cache.AddIndices(indices), nil
}

// encodeLineMValues implements SPEC_FULL.md 4.4's two distinct default-fill
// paths for a single line/ring, given the feature already established it
// has M-values somewhere. lineHasM distinguishes "this line itself carries
// at least one M-value" (per-vertex bare-default fill) from "this line has
// none at all" (full shape-zero-filled fill).
func encodeLineMValues(verts []geometry.Point, lineHasM bool, mShape *shape.Shape, cache *column.Writer) ([]uint32, error) {
	if mShape == nil {
		return nil, nil
	}
	idxs := make([]uint32, 0, len(verts))
	if lineHasM {
		for _, p := range verts {
			idx, err := encodeVertexM(p.M, *mShape, cache)
			if err != nil {
				return nil, err
			}
			idxs = append(idxs, uint32(idx))
		}
		return idxs, nil
	}
	for range verts {
		idx, err := column.EncodeValue(shape.ZeroValue(*mShape), *mShape, cache)
		if err != nil {
			return nil, err
		}
		idxs = append(idxs, uint32(idx))
	}
	return idxs, nil
}

func encodeLine3DMValues(verts []geometry.Point3D, lineHasM bool, mShape *shape.Shape, cache *column.Writer) ([]uint32, error) {
	if mShape == nil {
		return nil, nil
	}
	idxs := make([]uint32, 0, len(verts))
	if lineHasM {
		for _, p := range verts {
			idx, err := encodeVertexM(p.M, *mShape, cache)
			if err != nil {
				return nil, err
			}
			idxs = append(idxs, uint32(idx))
		}
		return idxs, nil
	}
	for range verts {
		idx, err := column.EncodeValue(shape.ZeroValue(*mShape), *mShape, cache)
		if err != nil {
			return nil, err
		}
		idxs = append(idxs, uint32(idx))
	}
	return idxs, nil
}

// encodeVertexM encodes a single vertex's own M-value (case 1 of
// SPEC_FULL.md 4.4: within an M-bearing line, a vertex that lacks one). A
// present M-value is encoded normally against mShape; an absent one is
// stored as the bare empty placeholder — a zero-length Shapes-column entry
// (deduplicated like any other) that is never run through mShape at all, not the same thing as a
// shape-zero-filled encode (DecodeValue's own lenient zero-fill on an
// exhausted stream reconstructs the right result either way).
func encodeVertexM(m *shape.Value, mShape shape.Shape, cache *column.Writer) (uint64, error) {
	if m == nil {
		return cache.AddShapes(nil), nil
	}
	return column.EncodeValue(*m, mShape, cache)
}

func stripPointM(pts []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	return out
}

func stripPoint3DM(pts []geometry.Point3D) []geometry.Point3D {
	out := make([]geometry.Point3D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

func weave2D(x, y int32) uint32 {
	return codec.Weave2D(uint16(wire.Zigzag32(x)), uint16(wire.Zigzag32(y)))
}

func weave3D(x, y, z int32) uint64 {
	return codec.Weave3D(uint16(wire.Zigzag32(x)), uint16(wire.Zigzag32(y)), uint16(wire.Zigzag32(z)))
}

// WriteFeature serializes a single feature to its submessage bytes (spec
// §4.5): type, flags, optional id, properties index, geometry reference,
// optional indices/tessellation/bbox, in that fixed order, as a flat
// sequence of unsigned varints with no per-field protobuf tags — the
// feature submessage is its own tiny fixed-position wire format, not a
// nested protobuf message. The caller (the layer writer) wraps the result
// in a length-delimited field.
func WriteFeature(f BaseFeature, propShape shape.Shape, mShape *shape.Shape, cache *column.Writer) ([]byte, error) {
	hasID := f.ID != nil
	hasBBox := f.HasBBox()
	hasOffsets := f.HasOffsets()
	hasIndices := f.HasIndices()
	hasTessellation := f.HasTessellation()
	hasMValues := f.HasMValues()
	single := f.Single()

	var flags uint64
	if hasID {
		flags |= flagID
	}
	if hasBBox {
		flags |= flagBBox
	}
	if hasOffsets {
		flags |= flagOffsets
	}
	if hasIndices {
		flags |= flagIndices
	}
	if hasTessellation {
		flags |= flagTessellation
	}
	if hasMValues {
		flags |= flagMValues
	}
	if single {
		flags |= flagSingle
	}

	values := make([]uint64, 0, 8)
	values = append(values, uint64(f.Type), flags)
	if hasID {
		values = append(values, *f.ID)
	}

	valueIdx, err := column.EncodeValue(f.Properties, propShape, cache)
	if err != nil {
		return nil, err
	}
	values = append(values, valueIdx)

	geomRef, err := f.EncodeToCache(cache, mShape)
	if err != nil {
		return nil, err
	}
	values = append(values, geomRef)

	if hasIndices {
		values = append(values, cache.AddIndices(f.Indices))
	}
	if hasTessellation {
		if f.Type == Polygons3D {
			values = append(values, cache.AddPoints3D(f.Tessellation3D))
		} else {
			values = append(values, cache.AddPoints(f.Tessellation))
		}
	}
	if hasBBox {
		if f.BBox3D != nil {
			values = append(values, cache.AddBBox3D(*f.BBox3D))
		} else {
			values = append(values, cache.AddBBox(*f.BBox))
		}
	}

	return wire.AppendPackedVarint(nil, values), nil
}
