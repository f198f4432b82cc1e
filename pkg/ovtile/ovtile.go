// Package ovtile provides a clean public API for reading and writing Open
// Vector Tile (OVT) containers, and for interoperating with the legacy
// Mapbox Vector Tile (MVT) format. The wrapper boundary here follows
// pkg/s57's: every internal storage detail (the column cache, lazy
// decoders, shape streams) stays behind unexported fields; callers see
// accessor methods and the plain geometry/value types.
package ovtile

import (
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/layer"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/tile"
)

// Plain data types shared by the decode and encode surfaces.
type (
	Point            = geometry.Point
	Point3D          = geometry.Point3D
	BBox             = geometry.BBox
	BBox3D           = geometry.BBox3D
	LineWithOffset   = geometry.LineWithOffset
	Line3DWithOffset = geometry.Line3DWithOffset
	Polygon          = geometry.Polygon
	Polygon3D        = geometry.Polygon3D
	Value            = shape.Value
	Shape            = shape.Shape
	FeatureType      = feature.FeatureType
	Extent           = feature.Extent
	// FeatureGeometry is a fully materialized feature: the same tagged
	// union the codec uses internally for both writing and lazy reading.
	FeatureGeometry = feature.BaseFeature
)

// FeatureType values (spec §3).
const (
	Points     = feature.Points
	Lines      = feature.Lines
	Polygons   = feature.Polygons
	Points3D   = feature.Points3D
	Lines3D    = feature.Lines3D
	Polygons3D = feature.Polygons3D
)

// Extent values (spec §3): the tile-local quantization grid width.
const (
	Extent512   = feature.Extent512
	Extent1024  = feature.Extent1024
	Extent2048  = feature.Extent2048
	Extent4096  = feature.Extent4096
	Extent8192  = feature.Extent8192
	Extent16384 = feature.Extent16384
)

// Tile is a decoded Open Vector Tile.
//
// Example:
//
//	t, err := ovtile.DecodeTile(data)
//	if err != nil {
//		return err
//	}
//	for _, name := range t.LayerNames() {
//		layer, _ := t.Layer(name)
//		fmt.Println(name, len(layer.Features()))
//	}
type Tile struct {
	inner *tile.Tile
}

// LayerNames returns the tile's layer names in sorted order.
func (t *Tile) LayerNames() []string { return t.inner.LayerNames() }

// Layer looks up a decoded layer by name.
func (t *Tile) Layer(name string) (*Layer, bool) {
	l, ok := t.inner.Layer(name)
	if !ok {
		return nil, false
	}
	return &Layer{inner: l}, true
}

// Layer is a decoded layer: a named, extent- and shape-scoped collection of
// features.
type Layer struct {
	inner *layer.Layer
}

func (l *Layer) Name() string   { return l.inner.Name }
func (l *Layer) Extent() Extent { return l.inner.Extent }
func (l *Layer) Shape() Shape   { return l.inner.Shape }
func (l *Layer) MShape() Shape  { return l.inner.MShape }

// Features returns every feature the layer's wire form contained.
func (l *Layer) Features() []*Feature {
	out := make([]*Feature, len(l.inner.Features))
	for i, f := range l.inner.Features {
		out[i] = &Feature{inner: f}
	}
	return out
}

// Feature is a single decoded feature. Geometry resolves lazily against the
// tile's column cache and is memoized on first access; BBox, Indices, and
// Tessellation are not memoized and look their entries up in the column
// cache on every call.
type Feature struct {
	inner *feature.OpenFeature
}

// ID returns the feature's id and whether one was present.
func (f *Feature) ID() (uint64, bool) {
	if f.inner.ID == nil {
		return 0, false
	}
	return *f.inner.ID, true
}

func (f *Feature) Properties() Value   { return f.inner.Properties }
func (f *Feature) Type() FeatureType   { return f.inner.Type }
func (f *Feature) HasMValues() bool    { return f.inner.HasMValues() }
func (f *Feature) HasOffsets() bool    { return f.inner.HasOffsets() }

// Geometry resolves and memoizes the feature's geometry.
func (f *Feature) Geometry() (FeatureGeometry, error) { return f.inner.Geometry() }

// BBox resolves the feature's bounding box, if any.
func (f *Feature) BBox() (BBox, *BBox3D, bool, error) { return f.inner.BBox() }

// Indices resolves the feature's explicit triangulation indices
// (Polygons/Polygons3D only).
func (f *Feature) Indices() ([]uint32, error) { return f.inner.Indices() }

// Tessellation resolves the feature's 2D triangulation vertices.
func (f *Feature) Tessellation() ([]Point, error) { return f.inner.Tessellation() }

// Tessellation3D resolves the feature's 3D triangulation vertices.
func (f *Feature) Tessellation3D() ([]Point3D, error) { return f.inner.Tessellation3D() }

// DecodeTile decodes an Open Vector Tile, transcoding any legacy Mapbox
// layers it contains. Equivalent to DecodeTileWithOptions(data,
// DefaultDecodeOptions()).
func DecodeTile(data []byte) (*Tile, error) {
	return DecodeTileWithOptions(data, DefaultDecodeOptions())
}

// DecodeTileWithOptions decodes data under the given options.
func DecodeTileWithOptions(data []byte, opts DecodeOptions) (*Tile, error) {
	t, err := tile.DecodeTileOptions(data, opts.TranscodeLegacy)
	if err != nil {
		return nil, err
	}
	return &Tile{inner: t}, nil
}

// DecodeMapboxTile decodes a legacy Mapbox Vector Tile, transcoding it into
// Open form. It is the same decoder as DecodeTile — any tile field using
// the legacy layer tags is transcoded automatically — named separately for
// callers who know their input is legacy and want that documented at the
// call site.
func DecodeMapboxTile(data []byte) (*Tile, error) {
	return DecodeTile(data)
}

// EncodeMapboxTile serializes a decoded tile back out as a legacy Mapbox
// Vector Tile (the supplemented Open→Mapbox export direction, SPEC_FULL.md
// §3).
func EncodeMapboxTile(t *Tile) ([]byte, error) {
	return tile.EncodeMapbox(t.inner)
}

// Builder accumulates layers for encoding a fresh Open Vector Tile.
//
// Example:
//
//	b := ovtile.NewBuilder()
//	l := ovtile.NewLayer("roads", ovtile.Extent4096)
//	l.AddFeature(ovtile.NewPointsFeature(nil, ovtile.Value{}, []ovtile.Point{{X: 0, Y: 0}}, nil))
//	b.AddLayer(l)
//	data, err := b.Encode()
type Builder struct {
	inner *tile.BaseTile
}

// NewBuilder returns an empty tile builder.
func NewBuilder() *Builder {
	return &Builder{inner: tile.NewBaseTile()}
}

// AddLayer inserts or replaces a layer by name.
func (b *Builder) AddLayer(l *LayerBuilder) {
	b.inner.AddLayer(l.inner)
}

// Encode serializes the accumulated layers to Open Vector Tile bytes.
func (b *Builder) Encode() ([]byte, error) {
	return tile.EncodeTile(b.inner)
}

// LayerBuilder accumulates features for one named layer.
type LayerBuilder struct {
	inner *layer.BaseLayer
}

// NewLayer returns an empty layer whose properties shape and M-values
// shape are both inferred from the features added to it.
func NewLayer(name string, extent Extent) *LayerBuilder {
	return &LayerBuilder{inner: layer.NewBaseLayer(name, extent, nil, nil)}
}

// AddFeature appends f, merging its properties and M-values into the
// layer's inferred shapes.
func (l *LayerBuilder) AddFeature(f FeatureGeometry) error {
	return l.inner.AddFeature(f)
}

// Feature constructors, one per (geometry kind × dimensionality)
// combination (spec §3).
func NewPointsFeature(id *uint64, props Value, geom []Point, bbox *BBox) FeatureGeometry {
	return feature.NewPointsFeature(id, props, geom, bbox)
}

func NewPoints3DFeature(id *uint64, props Value, geom []Point3D, bbox *BBox3D) FeatureGeometry {
	return feature.NewPoints3DFeature(id, props, geom, bbox)
}

func NewLinesFeature(id *uint64, props Value, geom []LineWithOffset, bbox *BBox) FeatureGeometry {
	return feature.NewLinesFeature(id, props, geom, bbox)
}

func NewLines3DFeature(id *uint64, props Value, geom []Line3DWithOffset, bbox *BBox3D) FeatureGeometry {
	return feature.NewLines3DFeature(id, props, geom, bbox)
}

func NewPolygonsFeature(id *uint64, props Value, geom []Polygon, bbox *BBox, indices []uint32, tess []Point) FeatureGeometry {
	return feature.NewPolygonsFeature(id, props, geom, bbox, indices, tess)
}

func NewPolygons3DFeature(id *uint64, props Value, geom []Polygon3D, bbox *BBox3D, indices []uint32, tess []Point3D) FeatureGeometry {
	return feature.NewPolygons3DFeature(id, props, geom, bbox, indices, tess)
}
