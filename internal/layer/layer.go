// Package layer implements the named-layer container that sits between a
// tile and its features (spec §4.6): BaseLayer accumulates features for
// writing, inferring a shared properties shape and M-values shape as
// features are added unless the caller pinned one explicitly; Layer is the
// decoded, read-only counterpart holding every feature the wire form
// contained.
package layer

import (
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/shape"
)

// BaseLayer is the writer-side accumulator for one named layer.
type BaseLayer struct {
	Version uint8
	Name    string
	Extent  feature.Extent

	Features []feature.BaseFeature

	// ShapeDefined/MShapeDefined record whether the caller supplied an
	// explicit shape at construction, in which case AddFeature never merges
	// into it (mirroring BaseVectorLayer::add_feature's shape_defined /
	// m_shape_defined guards).
	ShapeDefined  bool
	MShapeDefined bool
	Shape         shape.Shape
	MShape        *shape.Shape
}

// NewBaseLayer returns an empty layer. A nil definedShape/definedMShape
// means the layer's shape is inferred entirely from the features it
// accumulates; a non-nil one is held fixed across every AddFeature call.
func NewBaseLayer(name string, extent feature.Extent, definedShape shape.Shape, definedMShape *shape.Shape) *BaseLayer {
	l := &BaseLayer{
		Version:       1,
		Name:          name,
		Extent:        extent,
		ShapeDefined:  definedShape != nil,
		MShapeDefined: definedMShape != nil,
		Shape:         shape.Shape{},
		MShape:        definedMShape,
	}
	if definedShape != nil {
		l.Shape = definedShape
	}
	return l
}

// AddFeature appends f, merging its properties into the layer's shape and
// any M-values it carries into the layer's M-shape, unless the
// corresponding shape was pinned at construction (spec §4.6(a)).
func (l *BaseLayer) AddFeature(f feature.BaseFeature) error {
	if !l.ShapeDefined {
		if err := l.Shape.Merge(shape.ShapeOf(f.Properties)); err != nil {
			return err
		}
	}
	if !l.MShapeDefined {
		for _, mv := range featureMValues(f) {
			if l.MShape == nil {
				s := shape.ShapeOf(mv)
				l.MShape = &s
				continue
			}
			if err := l.MShape.Merge(shape.ShapeOf(mv)); err != nil {
				return err
			}
		}
	}
	l.Features = append(l.Features, f)
	return nil
}

// featureMValues collects every explicit per-vertex M-value carried by f's
// geometry, across whichever of the six geometry slots Type selects.
func featureMValues(f feature.BaseFeature) []shape.Value {
	var out []shape.Value
	add := func(v *shape.Value) {
		if v != nil {
			out = append(out, *v)
		}
	}
	switch f.Type {
	case feature.Points:
		for _, p := range f.PointGeom {
			add(p.M)
		}
	case feature.Points3D:
		for _, p := range f.Point3D {
			add(p.M)
		}
	case feature.Lines:
		for _, l := range f.LineGeom {
			for _, p := range l.Vertices {
				add(p.M)
			}
		}
	case feature.Lines3D:
		for _, l := range f.Line3D {
			for _, p := range l.Vertices {
				add(p.M)
			}
		}
	case feature.Polygons:
		for _, poly := range f.PolyGeom {
			for _, l := range poly {
				for _, p := range l.Vertices {
					add(p.M)
				}
			}
		}
	case feature.Polygons3D:
		for _, poly := range f.Poly3D {
			for _, l := range poly {
				for _, p := range l.Vertices {
					add(p.M)
				}
			}
		}
	}
	return out
}

// Layer is the decoded, read-only view of a layer: every feature the wire
// form contained, retained in full (spec §3's fix of the original's
// discard-on-read omission — see SPEC_FULL.md §3).
type Layer struct {
	Version  uint8
	Name     string
	Extent   feature.Extent
	Shape    shape.Shape
	MShape   shape.Shape
	Features []*feature.OpenFeature
}
