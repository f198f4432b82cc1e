package mapbox

import (
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// FeatureType is the legacy MVT geometry-kind discriminant (field id 2 on a
// legacy feature submessage). Numbered independently of feature.FeatureType
// — MVT's own enum, not OVT's.
type FeatureType uint8

const (
	Point FeatureType = iota + 1
	Line
	Polygon
	MultiPolygon
)

// Command-stream opcodes (spec §4.6): the low 3 bits of each command varint.
const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdNextPoly  = 4
	cmdClosePath = 7
)

// path is one MoveTo-initiated vertex run from the command stream, before
// it is classified as a bare line or a polygon ring.
type path struct {
	points  []geometry.Point
	closed  bool
	newPoly bool
}

// decodeCommands drains a command-stream submessage into its constituent
// paths. Coordinate deltas are zigzag-varint encoded relative to a running
// cursor that persists across the whole stream (spec §4.6).
func decodeCommands(data []byte) ([]path, error) {
	r := wire.NewReader(data)
	var paths []path
	var cur *path
	var x, y int32
	pendingNewPoly := false

	for r.Pos() < r.Len() {
		cmdInt, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		cmd := cmdInt & 0x7
		count := cmdInt >> 3

		switch cmd {
		case cmdMoveTo:
			for i := uint64(0); i < count; i++ {
				dx, err := r.ReadSVarint()
				if err != nil {
					return nil, err
				}
				dy, err := r.ReadSVarint()
				if err != nil {
					return nil, err
				}
				x += int32(dx)
				y += int32(dy)
				paths = append(paths, path{points: []geometry.Point{{X: x, Y: y}}, newPoly: pendingNewPoly})
				pendingNewPoly = false
				cur = &paths[len(paths)-1]
			}
		case cmdLineTo:
			if cur == nil {
				return nil, &ovterr.InvalidGeometry{Reason: "LineTo before any MoveTo"}
			}
			for i := uint64(0); i < count; i++ {
				dx, err := r.ReadSVarint()
				if err != nil {
					return nil, err
				}
				dy, err := r.ReadSVarint()
				if err != nil {
					return nil, err
				}
				x += int32(dx)
				y += int32(dy)
				cur.points = append(cur.points, geometry.Point{X: x, Y: y})
			}
		case cmdClosePath:
			if cur != nil {
				cur.closed = true
			}
		case cmdNextPoly:
			pendingNewPoly = true
		default:
			return nil, &ovterr.InvalidGeometry{Reason: "unrecognized command-stream opcode"}
		}
	}
	return paths, nil
}

// signedArea computes the shoelace-style winding sum spec §4.6 classifies
// rings by: sum of (x2-x1)*(y1+y2) over consecutive vertex pairs, wrapping
// the last vertex back to the first.
func signedArea(pts []geometry.Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += float64(pts[j].X-pts[i].X) * float64(pts[i].Y+pts[j].Y)
	}
	return area
}

func closeRing(p path) []geometry.Point {
	if !p.closed || len(p.points) == 0 {
		return p.points
	}
	out := make([]geometry.Point, len(p.points)+1)
	copy(out, p.points)
	out[len(p.points)] = p.points[0]
	return out
}

// classifyRings groups a command stream's paths into polygons, classifying
// each ring as a new polygon's outer boundary or a hole of the
// most-recently-opened polygon (spec §4.6, spec Design Note 9.6). The source
// bug this fixes incremented the ring cursor inside every branch except the
// zero-area "continue" one; the loop below always advances i exactly once
// per iteration, whichever branch is taken, so a zero-area ring is dropped
// and the cursor still moves past it.
//
// Orientation is classified relative to the first ring's own winding, not
// an absolute sign: a ring is an outer boundary iff its winding matches the
// first ring seen (ccw), matching the reference classifier rather than a
// fixed "negative area is outer" rule.
func classifyRings(paths []path) []geometry.Polygon {
	var polys []geometry.Polygon
	haveOrientation := false
	outerIsNegative := false
	for i := 0; i < len(paths); i++ {
		p := paths[i]
		area := signedArea(p.points)
		if area == 0 {
			continue
		}
		if !haveOrientation {
			outerIsNegative = area < 0
			haveOrientation = true
		}
		ring := geometry.LineWithOffset{Vertices: closeRing(p)}
		isOuter := (area < 0) == outerIsNegative
		if p.newPoly || len(polys) == 0 || isOuter {
			polys = append(polys, geometry.Polygon{ring})
			continue
		}
		polys[len(polys)-1] = append(polys[len(polys)-1], ring)
	}
	return polys
}

// Feature is a decoded legacy MVT feature: header fields read eagerly, with
// geometry resolved eagerly too (unlike OpenFeature, a Mapbox feature has no
// shared growing column cache to defer against).
type Feature struct {
	ID         *uint64
	Type       FeatureType
	Properties shape.Value

	PointGeom []geometry.Point
	LineGeom  []geometry.LineWithOffset
	PolyGeom  []geometry.Polygon

	Indices      []uint32
	Tessellation []geometry.Point
}

// legacy feature field table (spec §6): 15=id, 1=packed tag/value-index
// pairs, 2=FeatureType, 3=geometry command stream, 4=indices (S2
// extension), 5=tessellation (S2 extension).
const (
	featFieldID           = 15
	featFieldTags         = 1
	featFieldType         = 2
	featFieldGeometry     = 3
	featFieldIndices      = 4
	featFieldTessellation = 5
)

// decodeFeature parses one legacy feature submessage. keys/values are the
// layer-wide string/value tables the tag pairs index into.
func decodeFeature(data []byte, keys []string, values []shape.PrimitiveValue) (*Feature, error) {
	r := wire.NewReader(data)
	f := &Feature{Type: Point}
	var tagPairs []uint64
	var geomBytes, indicesBytes, tessBytes []byte

	for r.Pos() < r.Len() {
		tag, _, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case featFieldID:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			f.ID = &v
		case featFieldTags:
			vs, err := r.ReadPackedVarint()
			if err != nil {
				return nil, err
			}
			tagPairs = vs
		case featFieldType:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			f.Type = FeatureType(v)
		case featFieldGeometry:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			geomBytes = b
		case featFieldIndices:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			indicesBytes = b
		case featFieldTessellation:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			tessBytes = b
		default:
			return nil, &ovterr.MalformedInput{Offset: r.Pos(), Reason: "unknown legacy feature field tag"}
		}
	}

	props := shape.Value{}
	for i := 0; i+1 < len(tagPairs); i += 2 {
		ki, vi := tagPairs[i], tagPairs[i+1]
		if int(ki) >= len(keys) || int(vi) >= len(values) {
			return nil, &ovterr.MalformedInput{Reason: "legacy property tag/value index out of range"}
		}
		props[keys[ki]] = primitiveToValueType(values[vi])
	}
	f.Properties = props

	paths, err := decodeCommands(geomBytes)
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case Point:
		for _, p := range paths {
			f.PointGeom = append(f.PointGeom, p.points...)
		}
	case Line:
		for _, p := range paths {
			f.LineGeom = append(f.LineGeom, geometry.LineWithOffset{Vertices: p.points})
		}
	case Polygon, MultiPolygon:
		f.PolyGeom = classifyRings(paths)
	default:
		return nil, &ovterr.UnknownFeatureType{Code: uint64(f.Type)}
	}

	if indicesBytes != nil {
		vs, err := wire.ParsePackedVarint(indicesBytes)
		if err != nil {
			return nil, err
		}
		idxs := make([]uint32, len(vs))
		for i, v := range vs {
			idxs[i] = uint32(v)
		}
		f.Indices = idxs
	}
	if tessBytes != nil {
		paths, err := decodeCommands(tessBytes)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			f.Tessellation = append(f.Tessellation, p.points...)
		}
	}
	return f, nil
}

func primitiveToValueType(pv shape.PrimitiveValue) shape.ValueType {
	return shape.ValueType{Kind: shape.KindPrimitive, Primitive: pv}
}

// ToBaseFeature converts a decoded legacy feature into the OVT writer-side
// tagged union (the per-feature half of spec §4.6's legacy→Open
// transcoder), grounded on the Rust `From<&mut MapboxVectorFeature> for
// BaseVectorFeature` conversion.
func (f *Feature) ToBaseFeature() feature.BaseFeature {
	switch f.Type {
	case Point:
		return feature.NewPointsFeature(f.ID, f.Properties, f.PointGeom, nil)
	case Line:
		return feature.NewLinesFeature(f.ID, f.Properties, f.LineGeom, nil)
	case Polygon, MultiPolygon:
		return feature.NewPolygonsFeature(f.ID, f.Properties, f.PolyGeom, nil, f.Indices, f.Tessellation)
	}
	return feature.BaseFeature{}
}
