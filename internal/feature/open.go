package feature

import (
	"github.com/tilekiln/ovtile/internal/codec"
	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// OpenFeature is a lazily-materializing decoded feature: the fixed-position
// header fields (id, type, flags, properties) and the geometry's
// Indices-column entry are read eagerly at ReadFeature time. Geometry is
// resolved against the column cache on first access and then memoized.
// BBox, Indices, and Tessellation are not memoized on the feature: each call
// looks its entry up in the materialized column cache again (BBox
// dequantizes its entry on every call).
type OpenFeature struct {
	ID         *uint64
	Properties shape.Value
	Type       FeatureType

	cache  *column.Reader
	mShape shape.Shape
	extent Extent

	geometryIndices []uint32
	single          bool
	hasOffsets      bool
	hasMValues      bool

	bboxIndex         *uint64
	indicesIndex      *uint64
	tessellationIndex *uint64

	geomLoaded bool
	geom       BaseFeature
	geomErr    error
}

// Extent returns the tile-local coordinate space this feature's geometry is
// quantized against.
func (f *OpenFeature) Extent() Extent { return f.extent }

// HasMValues reports whether the feature's geometry carries M-values.
func (f *OpenFeature) HasMValues() bool { return f.hasMValues }

// HasOffsets reports whether the feature's lines/rings carry dash-phase
// offsets.
func (f *OpenFeature) HasOffsets() bool { return f.hasOffsets }

// BBox resolves the feature's bounding box, if any.
func (f *OpenFeature) BBox() (geometry.BBox, *geometry.BBox3D, bool, error) {
	if f.bboxIndex == nil {
		return geometry.BBox{}, nil, false, nil
	}
	b2, b3, err := f.cache.GetBBox(*f.bboxIndex)
	if err != nil {
		return geometry.BBox{}, nil, false, err
	}
	return b2, b3, true, nil
}

// Indices resolves the feature's explicit triangulation indices
// (Polygons/Polygons3D only), or nil if the feature has none.
func (f *OpenFeature) Indices() ([]uint32, error) {
	if f.indicesIndex == nil {
		return nil, nil
	}
	return f.cache.GetIndices(*f.indicesIndex)
}

// Tessellation resolves the feature's 2D triangulation vertices.
func (f *OpenFeature) Tessellation() ([]geometry.Point, error) {
	if f.tessellationIndex == nil {
		return nil, nil
	}
	return f.cache.GetPoints(*f.tessellationIndex)
}

// Tessellation3D resolves the feature's 3D triangulation vertices.
func (f *OpenFeature) Tessellation3D() ([]geometry.Point3D, error) {
	if f.tessellationIndex == nil {
		return nil, nil
	}
	return f.cache.GetPoints3D(*f.tessellationIndex)
}

// Geometry lazily resolves and memoizes the feature's geometry into a
// BaseFeature-shaped result (sharing that type rather than introducing a
// parallel read-side geometry representation).
func (f *OpenFeature) Geometry() (BaseFeature, error) {
	if f.geomLoaded {
		return f.geom, f.geomErr
	}
	f.geomLoaded = true
	switch f.Type {
	case Points:
		pts, err := f.loadPoints()
		f.geom, f.geomErr = BaseFeature{Type: Points, ID: f.ID, Properties: f.Properties, PointGeom: pts}, err
	case Points3D:
		pts, err := f.loadPoints3D()
		f.geom, f.geomErr = BaseFeature{Type: Points3D, ID: f.ID, Properties: f.Properties, Point3D: pts}, err
	case Lines:
		lines, err := f.loadLines()
		f.geom, f.geomErr = BaseFeature{Type: Lines, ID: f.ID, Properties: f.Properties, LineGeom: lines}, err
	case Lines3D:
		lines, err := f.loadLines3D()
		f.geom, f.geomErr = BaseFeature{Type: Lines3D, ID: f.ID, Properties: f.Properties, Line3D: lines}, err
	case Polygons:
		polys, err := f.loadPolys()
		f.geom, f.geomErr = BaseFeature{Type: Polygons, ID: f.ID, Properties: f.Properties, PolyGeom: polys}, err
	case Polygons3D:
		polys, err := f.loadPolys3D()
		f.geom, f.geomErr = BaseFeature{Type: Polygons3D, ID: f.ID, Properties: f.Properties, Poly3D: polys}, err
	default:
		f.geomErr = &ovterr.UnknownFeatureType{Code: uint64(f.Type)}
	}
	return f.geom, f.geomErr
}

func (f *OpenFeature) loadPoints() ([]geometry.Point, error) {
	if f.single {
		a, b := codec.Unweave2D(f.geometryIndices[0])
		return []geometry.Point{{X: wire.Zagzig32(uint32(a)), Y: wire.Zagzig32(uint32(b))}}, nil
	}
	pos := 0
	pts, err := f.cache.GetPoints(uint64(f.geometryIndices[pos]))
	if err != nil {
		return nil, err
	}
	pos++
	if f.hasMValues {
		out := make([]geometry.Point, len(pts))
		copy(out, pts)
		for i := range out {
			v, err := column.DecodeValue(uint64(f.geometryIndices[pos]), f.mShape, f.cache)
			if err != nil {
				return nil, err
			}
			out[i].M = &v
			pos++
		}
		return out, nil
	}
	return pts, nil
}

func (f *OpenFeature) loadPoints3D() ([]geometry.Point3D, error) {
	if f.single {
		a, b, c := codec.Unweave3D(uint64(f.geometryIndices[0]))
		return []geometry.Point3D{{X: wire.Zagzig32(uint32(a)), Y: wire.Zagzig32(uint32(b)), Z: wire.Zagzig32(uint32(c))}}, nil
	}
	pos := 0
	pts, err := f.cache.GetPoints3D(uint64(f.geometryIndices[pos]))
	if err != nil {
		return nil, err
	}
	pos++
	if f.hasMValues {
		out := make([]geometry.Point3D, len(pts))
		copy(out, pts)
		for i := range out {
			v, err := column.DecodeValue(uint64(f.geometryIndices[pos]), f.mShape, f.cache)
			if err != nil {
				return nil, err
			}
			out[i].M = &v
			pos++
		}
		return out, nil
	}
	return pts, nil
}

func (f *OpenFeature) loadLines() ([]geometry.LineWithOffset, error) {
	pos := 0
	lineCount := uint32(1)
	if !f.single {
		lineCount = f.geometryIndices[pos]
		pos++
	}
	res := make([]geometry.LineWithOffset, 0, lineCount)
	for i := uint32(0); i < lineCount; i++ {
		var offset float64
		if f.hasOffsets {
			offset = DecodeOffset(f.geometryIndices[pos])
			pos++
		}
		verts, err := f.cache.GetPoints(uint64(f.geometryIndices[pos]))
		if err != nil {
			return nil, err
		}
		pos++
		verts, err = f.fillMValues(verts, f.geometryIndices, &pos)
		if err != nil {
			return nil, err
		}
		res = append(res, geometry.LineWithOffset{Offset: offset, Vertices: verts})
	}
	return res, nil
}

func (f *OpenFeature) loadLines3D() ([]geometry.Line3DWithOffset, error) {
	pos := 0
	lineCount := uint32(1)
	if !f.single {
		lineCount = f.geometryIndices[pos]
		pos++
	}
	res := make([]geometry.Line3DWithOffset, 0, lineCount)
	for i := uint32(0); i < lineCount; i++ {
		var offset float64
		if f.hasOffsets {
			offset = DecodeOffset(f.geometryIndices[pos])
			pos++
		}
		verts, err := f.cache.GetPoints3D(uint64(f.geometryIndices[pos]))
		if err != nil {
			return nil, err
		}
		pos++
		verts, err = f.fillMValues3D(verts, f.geometryIndices, &pos)
		if err != nil {
			return nil, err
		}
		res = append(res, geometry.Line3DWithOffset{Offset: offset, Vertices: verts})
	}
	return res, nil
}

func (f *OpenFeature) loadPolys() ([]geometry.Polygon, error) {
	pos := 0
	polyCount := uint32(1)
	if !f.single {
		polyCount = f.geometryIndices[pos]
		pos++
	}
	res := make([]geometry.Polygon, 0, polyCount)
	for i := uint32(0); i < polyCount; i++ {
		lineCount := f.geometryIndices[pos]
		pos++
		lines := make(geometry.Polygon, 0, lineCount)
		for j := uint32(0); j < lineCount; j++ {
			var offset float64
			if f.hasOffsets {
				offset = DecodeOffset(f.geometryIndices[pos])
				pos++
			}
			verts, err := f.cache.GetPoints(uint64(f.geometryIndices[pos]))
			if err != nil {
				return nil, err
			}
			pos++
			verts, err = f.fillMValues(verts, f.geometryIndices, &pos)
			if err != nil {
				return nil, err
			}
			lines = append(lines, geometry.LineWithOffset{Offset: offset, Vertices: verts})
		}
		res = append(res, lines)
	}
	return res, nil
}

func (f *OpenFeature) loadPolys3D() ([]geometry.Polygon3D, error) {
	pos := 0
	polyCount := uint32(1)
	if !f.single {
		polyCount = f.geometryIndices[pos]
		pos++
	}
	res := make([]geometry.Polygon3D, 0, polyCount)
	for i := uint32(0); i < polyCount; i++ {
		lineCount := f.geometryIndices[pos]
		pos++
		lines := make(geometry.Polygon3D, 0, lineCount)
		for j := uint32(0); j < lineCount; j++ {
			var offset float64
			if f.hasOffsets {
				offset = DecodeOffset(f.geometryIndices[pos])
				pos++
			}
			verts, err := f.cache.GetPoints3D(uint64(f.geometryIndices[pos]))
			if err != nil {
				return nil, err
			}
			pos++
			verts, err = f.fillMValues3D(verts, f.geometryIndices, &pos)
			if err != nil {
				return nil, err
			}
			lines = append(lines, geometry.Line3DWithOffset{Offset: offset, Vertices: verts})
		}
		res = append(res, lines)
	}
	return res, nil
}

func (f *OpenFeature) fillMValues(verts []geometry.Point, idxs []uint32, pos *int) ([]geometry.Point, error) {
	if !f.hasMValues {
		return verts, nil
	}
	out := make([]geometry.Point, len(verts))
	copy(out, verts)
	for i := range out {
		v, err := column.DecodeValue(uint64(idxs[*pos]), f.mShape, f.cache)
		if err != nil {
			return nil, err
		}
		out[i].M = &v
		*pos++
	}
	return out, nil
}

func (f *OpenFeature) fillMValues3D(verts []geometry.Point3D, idxs []uint32, pos *int) ([]geometry.Point3D, error) {
	if !f.hasMValues {
		return verts, nil
	}
	out := make([]geometry.Point3D, len(verts))
	copy(out, verts)
	for i := range out {
		v, err := column.DecodeValue(uint64(idxs[*pos]), f.mShape, f.cache)
		if err != nil {
			return nil, err
		}
		out[i].M = &v
		*pos++
	}
	return out, nil
}

// ReadFeature decodes a single feature's fixed-position header fields from
// data (a feature submessage's raw bytes, already sliced out by the
// layer's deferred-position pass). Geometry, bbox, indices, and
// tessellation are resolved lazily through the returned OpenFeature.
func ReadFeature(data []byte, extent Extent, cache *column.Reader, propShape shape.Shape, mShape shape.Shape) (*OpenFeature, error) {
	r := wire.NewReader(data)

	typeCode, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	ftype, err := TypeFromU64(typeCode)
	if err != nil {
		return nil, err
	}

	flags, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}

	var id *uint64
	if flags&flagID != 0 {
		v, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		id = &v
	}
	hasBBox := flags&flagBBox != 0
	hasOffsets := flags&flagOffsets != 0
	hasIndices := flags&flagIndices != 0
	hasTessellation := flags&flagTessellation != 0
	hasMValues := flags&flagMValues != 0
	single := flags&flagSingle != 0

	valueIdx, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	props, err := column.DecodeValue(valueIdx, propShape, cache)
	if err != nil {
		return nil, err
	}

	var geometryIndices []uint32
	switch ftype {
	case Points, Points3D:
		if single {
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			geometryIndices = []uint32{uint32(v)}
		} else {
			idx, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			geometryIndices, err = cache.GetIndices(idx)
			if err != nil {
				return nil, err
			}
		}
	default:
		idx, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		geometryIndices, err = cache.GetIndices(idx)
		if err != nil {
			return nil, err
		}
	}

	var indicesIndex, tessellationIndex *uint64
	if ftype == Polygons || ftype == Polygons3D {
		if hasIndices {
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			indicesIndex = &v
		}
		if hasTessellation {
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			tessellationIndex = &v
		}
	}

	var bboxIndex *uint64
	if hasBBox {
		v, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		bboxIndex = &v
	}

	return &OpenFeature{
		ID:                id,
		Properties:        props,
		Type:              ftype,
		cache:             cache,
		mShape:            mShape,
		extent:            extent,
		geometryIndices:   geometryIndices,
		single:            single,
		hasOffsets:        hasOffsets,
		hasMValues:        hasMValues,
		bboxIndex:         bboxIndex,
		indicesIndex:      indicesIndex,
		tessellationIndex: tessellationIndex,
	}, nil
}
