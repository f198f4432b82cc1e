package codec

import (
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/wire"
)

// WeaveDeltaEncodeArray zigzag-delta encodes consecutive vertices (each
// coordinate relative to the previous vertex, first relative to zero) and
// weaves each resulting (dx,dy) pair into a single packed uint64, the
// Points-column wire representation (spec §4.1).
func WeaveDeltaEncodeArray(points []geometry.Point) []uint64 {
	out := make([]uint64, 0, len(points))
	var prevX, prevY int32
	for _, p := range points {
		dx := wire.Zigzag32(p.X - prevX)
		dy := wire.Zigzag32(p.Y - prevY)
		out = append(out, uint64(Weave2D(uint16(dx), uint16(dy))))
		prevX, prevY = p.X, p.Y
	}
	return out
}

// UnweaveDeltaDecodeArray inverts WeaveDeltaEncodeArray.
func UnweaveDeltaDecodeArray(values []uint64) []geometry.Point {
	out := make([]geometry.Point, 0, len(values))
	var x, y int32
	for _, v := range values {
		dx, dy := Unweave2D(uint32(v))
		x += wire.Zagzig32(uint32(dx))
		y += wire.Zagzig32(uint32(dy))
		out = append(out, geometry.Point{X: x, Y: y})
	}
	return out
}

// WeaveDeltaEncode3DArray is the 3D analog of WeaveDeltaEncodeArray.
func WeaveDeltaEncode3DArray(points []geometry.Point3D) []uint64 {
	out := make([]uint64, 0, len(points))
	var prevX, prevY, prevZ int32
	for _, p := range points {
		dx := wire.Zigzag32(p.X - prevX)
		dy := wire.Zigzag32(p.Y - prevY)
		dz := wire.Zigzag32(p.Z - prevZ)
		out = append(out, Weave3D(uint16(dx), uint16(dy), uint16(dz)))
		prevX, prevY, prevZ = p.X, p.Y, p.Z
	}
	return out
}

// UnweaveDeltaDecode3DArray inverts WeaveDeltaEncode3DArray.
func UnweaveDeltaDecode3DArray(values []uint64) []geometry.Point3D {
	out := make([]geometry.Point3D, 0, len(values))
	var x, y, z int32
	for _, v := range values {
		dx, dy, dz := Unweave3D(v)
		x += wire.Zagzig32(uint32(dx))
		y += wire.Zagzig32(uint32(dy))
		z += wire.Zagzig32(uint32(dz))
		out = append(out, geometry.Point3D{X: x, Y: y, Z: z})
	}
	return out
}

// DeltaEncodeArray zigzag-delta encodes a sequence of u32 values (the
// Indices column's wire representation).
func DeltaEncodeArray(values []uint32) []uint64 {
	out := make([]uint64, 0, len(values))
	var prev int32
	for _, v := range values {
		cur := int32(v)
		out = append(out, uint64(wire.Zigzag32(cur-prev)))
		prev = cur
	}
	return out
}

// DeltaDecodeArray inverts DeltaEncodeArray.
func DeltaDecodeArray(values []uint64) []uint32 {
	out := make([]uint32, 0, len(values))
	var prev int32
	for _, v := range values {
		prev += wire.Zagzig32(uint32(v))
		out = append(out, uint32(prev))
	}
	return out
}
