package feature

import (
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/shape"
)

// BaseFeature is the writer-side representation of a single feature: a
// tagged union over the six (geometry kind × dimensionality) combinations
// in a single struct (Design Note 9.1 argues against an
// interface-plus-six-types hierarchy for exactly this shape). Only the
// fields matching Type are meaningful.
type BaseFeature struct {
	Type       FeatureType
	ID         *uint64
	Properties shape.Value

	PointGeom  []geometry.Point
	Point3D    []geometry.Point3D
	LineGeom   []geometry.LineWithOffset
	Line3D     []geometry.Line3DWithOffset
	PolyGeom   []geometry.Polygon
	Poly3D     []geometry.Polygon3D

	BBox   *geometry.BBox
	BBox3D *geometry.BBox3D

	// Indices and Tessellation are only meaningful for Polygons/Polygons3D:
	// triangulation output supplied by the caller, not the Indices-column
	// references the geometry codec itself produces.
	Indices        []uint32
	Tessellation   []geometry.Point
	Tessellation3D []geometry.Point3D
}

func NewPointsFeature(id *uint64, props shape.Value, geom []geometry.Point, bbox *geometry.BBox) BaseFeature {
	return BaseFeature{Type: Points, ID: id, Properties: props, PointGeom: geom, BBox: bbox}
}

func NewPoints3DFeature(id *uint64, props shape.Value, geom []geometry.Point3D, bbox *geometry.BBox3D) BaseFeature {
	return BaseFeature{Type: Points3D, ID: id, Properties: props, Point3D: geom, BBox3D: bbox}
}

func NewLinesFeature(id *uint64, props shape.Value, geom []geometry.LineWithOffset, bbox *geometry.BBox) BaseFeature {
	return BaseFeature{Type: Lines, ID: id, Properties: props, LineGeom: geom, BBox: bbox}
}

func NewLines3DFeature(id *uint64, props shape.Value, geom []geometry.Line3DWithOffset, bbox *geometry.BBox3D) BaseFeature {
	return BaseFeature{Type: Lines3D, ID: id, Properties: props, Line3D: geom, BBox3D: bbox}
}

func NewPolygonsFeature(id *uint64, props shape.Value, geom []geometry.Polygon, bbox *geometry.BBox, indices []uint32, tess []geometry.Point) BaseFeature {
	return BaseFeature{Type: Polygons, ID: id, Properties: props, PolyGeom: geom, BBox: bbox, Indices: indices, Tessellation: tess}
}

func NewPolygons3DFeature(id *uint64, props shape.Value, geom []geometry.Polygon3D, bbox *geometry.BBox3D, indices []uint32, tess []geometry.Point3D) BaseFeature {
	return BaseFeature{Type: Polygons3D, ID: id, Properties: props, Poly3D: geom, BBox3D: bbox, Indices: indices, Tessellation3D: tess}
}

// HasBBox reports whether a bbox was supplied for this feature.
func (f BaseFeature) HasBBox() bool {
	return f.BBox != nil || f.BBox3D != nil
}

// Single reports whether the feature's geometry collection has exactly one
// member — the count the flags byte's single bit records (spec §4.5;
// SPEC_FULL.md 4.5 on what "single" means per feature kind on decode).
func (f BaseFeature) Single() bool {
	switch f.Type {
	case Points:
		return len(f.PointGeom) == 1
	case Points3D:
		return len(f.Point3D) == 1
	case Lines:
		return len(f.LineGeom) == 1
	case Lines3D:
		return len(f.Line3D) == 1
	case Polygons:
		return len(f.PolyGeom) == 1
	case Polygons3D:
		return len(f.Poly3D) == 1
	}
	return false
}

// HasOffsets reports whether any line/ring in the feature carries a
// non-zero dash-phase offset. Points/Points3D never have offsets.
func (f BaseFeature) HasOffsets() bool {
	switch f.Type {
	case Lines:
		for _, l := range f.LineGeom {
			if l.HasOffset() {
				return true
			}
		}
	case Lines3D:
		for _, l := range f.Line3D {
			if l.HasOffset() {
				return true
			}
		}
	case Polygons:
		for _, poly := range f.PolyGeom {
			for _, l := range poly {
				if l.HasOffset() {
					return true
				}
			}
		}
	case Polygons3D:
		for _, poly := range f.Poly3D {
			for _, l := range poly {
				if l.HasOffset() {
					return true
				}
			}
		}
	}
	return false
}

// HasMValues reports whether any vertex anywhere in the feature's geometry
// carries an M-value.
func (f BaseFeature) HasMValues() bool {
	switch f.Type {
	case Points:
		for _, p := range f.PointGeom {
			if p.HasM() {
				return true
			}
		}
	case Points3D:
		for _, p := range f.Point3D {
			if p.HasM() {
				return true
			}
		}
	case Lines:
		for _, l := range f.LineGeom {
			if l.HasMValues() {
				return true
			}
		}
	case Lines3D:
		for _, l := range f.Line3D {
			if l.HasMValues() {
				return true
			}
		}
	case Polygons:
		for _, poly := range f.PolyGeom {
			for _, l := range poly {
				if l.HasMValues() {
					return true
				}
			}
		}
	case Polygons3D:
		for _, poly := range f.Poly3D {
			for _, l := range poly {
				if l.HasMValues() {
					return true
				}
			}
		}
	}
	return false
}

// HasIndices reports whether the feature carries an explicit triangulation
// indices list (Polygons/Polygons3D only).
func (f BaseFeature) HasIndices() bool {
	return len(f.Indices) > 0
}

// HasTessellation reports whether the feature carries triangulation
// vertices (Polygons/Polygons3D only).
func (f BaseFeature) HasTessellation() bool {
	return len(f.Tessellation) > 0 || len(f.Tessellation3D) > 0
}
