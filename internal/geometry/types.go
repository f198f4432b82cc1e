// Package geometry defines the plain coordinate and bounding-box types
// shared by the column cache, the geometry codec, and the feature codecs.
// None of these types know how to serialize themselves; encoding lives in
// internal/codec and internal/column, which operate on these as plain data.
package geometry

import "github.com/tilekiln/ovtile/internal/shape"

// Point is a tile-local 2D vertex in quantized integer coordinates, with an
// optional per-vertex attribute record (the M-value). M is nil when the
// vertex carries no M-value at all (SPEC_FULL.md 4.4 describes how such a
// vertex is default-filled on encode); a non-nil M is encoded against the
// layer's M-shape like any other value.
type Point struct {
	X, Y int32
	M    *shape.Value
}

// HasM reports whether this point carries an explicit M-value.
func (p Point) HasM() bool { return p.M != nil }

// Equal compares only X and Y, matching the original's Ord/PartialOrd impl:
// M is deliberately excluded from equality and ordering so that point
// sequences used as column-cache dedup keys are compared purely on
// coordinate.
func (p Point) Equal(o Point) bool {
	return p.X == o.X && p.Y == o.Y
}

// Less orders points by X then Y, ignoring M — used when a point sequence
// is compared as a dedup key.
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

// Point3D is the 3D analog of Point.
type Point3D struct {
	X, Y, Z int32
	M       *shape.Value
}

func (p Point3D) HasM() bool { return p.M != nil }

func (p Point3D) Equal(o Point3D) bool {
	return p.X == o.X && p.Y == o.Y && p.Z == o.Z
}

func (p Point3D) Less(o Point3D) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.Z < o.Z
}

// LineWithOffset is an ordered vertex sequence plus a dash-pattern phase
// offset in the same coordinate units. Offset 0 means "no offset".
type LineWithOffset struct {
	Offset   float64
	Vertices []Point
}

// HasOffset reports whether the line has a non-zero dash-phase offset.
func (l LineWithOffset) HasOffset() bool { return l.Offset != 0.0 }

// HasMValues reports whether any vertex in the line carries an M-value.
func (l LineWithOffset) HasMValues() bool {
	for _, p := range l.Vertices {
		if p.HasM() {
			return true
		}
	}
	return false
}

// Line3DWithOffset is the 3D analog of LineWithOffset.
type Line3DWithOffset struct {
	Offset   float64
	Vertices []Point3D
}

func (l Line3DWithOffset) HasOffset() bool { return l.Offset != 0.0 }

func (l Line3DWithOffset) HasMValues() bool {
	for _, p := range l.Vertices {
		if p.HasM() {
			return true
		}
	}
	return false
}

// Polygon is an ordered sequence of rings; ring 0 is the outer boundary,
// subsequent rings are holes.
type Polygon = []LineWithOffset

// Polygon3D is the 3D analog of Polygon.
type Polygon3D = []Line3DWithOffset

// BBox is a 2D geographic bounding box in degrees.
type BBox struct {
	Left, Bottom, Right, Top float64
}

// BBox3D is a geographic bounding box with near/far height in meters
// relative to the surface of the earth.
type BBox3D struct {
	Left, Bottom, Right, Top float64
	Near, Far                float64
}
