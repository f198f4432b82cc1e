package codec

import (
	"math"

	"github.com/tilekiln/ovtile/internal/geometry"
)

const lonLatScale = (1 << 24) - 1 // 16_777_215

// QuantizeLon maps a longitude in [-180,180] degrees to a 24-bit unsigned
// integer.
func QuantizeLon(lon float64) uint32 {
	return uint32(int64(math.Round((lon + 180) * lonLatScale / 360)))
}

// DequantizeLon inverts QuantizeLon.
func DequantizeLon(v uint32) float64 {
	return float64(v)*360/lonLatScale - 180
}

// QuantizeLat maps a latitude in [-90,90] degrees to a 24-bit unsigned
// integer.
func QuantizeLat(lat float64) uint32 {
	return uint32(int64(math.Round((lat + 90) * lonLatScale / 180)))
}

// DequantizeLat inverts QuantizeLat.
func DequantizeLat(v uint32) float64 {
	return float64(v)*180/lonLatScale - 90
}

// pack24 writes the low 24 bits of v into buf at offset, big-endian.
func pack24(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v >> 16)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v)
}

// unpack24 reads a big-endian 24-bit unsigned integer from buf at offset.
func unpack24(buf []byte, offset int) uint32 {
	return uint32(buf[offset])<<16 | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])
}

// packFloat32LE writes v as a little-endian 4-byte IEEE-754 float at offset.
func packFloat32LE(buf []byte, offset int, v float32) {
	bits := math.Float32bits(v)
	buf[offset] = byte(bits)
	buf[offset+1] = byte(bits >> 8)
	buf[offset+2] = byte(bits >> 16)
	buf[offset+3] = byte(bits >> 24)
}

// unpackFloat32LE reads a little-endian 4-byte IEEE-754 float at offset.
func unpackFloat32LE(buf []byte, offset int) float32 {
	bits := uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24
	return math.Float32frombits(bits)
}

// QuantizeBBox packs a 2D geographic bbox into its 12-byte wire form.
func QuantizeBBox(b geometry.BBox) []byte {
	buf := make([]byte, 12)
	pack24(buf, 0, QuantizeLon(b.Left))
	pack24(buf, 3, QuantizeLat(b.Bottom))
	pack24(buf, 6, QuantizeLon(b.Right))
	pack24(buf, 9, QuantizeLat(b.Top))
	return buf
}

// DequantizeBBox inverts QuantizeBBox. The 24-bit latitude encoding can
// legally "underflow" a value slightly outside [-90,90] back into range
// (spec §8 scenario 4); this is documented, intended behavior, not an
// error.
func DequantizeBBox(buf []byte) geometry.BBox {
	return geometry.BBox{
		Left:   DequantizeLon(unpack24(buf, 0)),
		Bottom: DequantizeLat(unpack24(buf, 3)),
		Right:  DequantizeLon(unpack24(buf, 6)),
		Top:    DequantizeLat(unpack24(buf, 9)),
	}
}

// QuantizeBBox3D packs a 3D geographic bbox into its 20-byte wire form: the
// 12-byte 2D encoding followed by little-endian near/far floats.
func QuantizeBBox3D(b geometry.BBox3D) []byte {
	buf := make([]byte, 20)
	pack24(buf, 0, QuantizeLon(b.Left))
	pack24(buf, 3, QuantizeLat(b.Bottom))
	pack24(buf, 6, QuantizeLon(b.Right))
	pack24(buf, 9, QuantizeLat(b.Top))
	packFloat32LE(buf, 12, float32(b.Near))
	packFloat32LE(buf, 16, float32(b.Far))
	return buf
}

// DequantizeBBox3D inverts QuantizeBBox3D.
func DequantizeBBox3D(buf []byte) geometry.BBox3D {
	return geometry.BBox3D{
		Left:   DequantizeLon(unpack24(buf, 0)),
		Bottom: DequantizeLat(unpack24(buf, 3)),
		Right:  DequantizeLon(unpack24(buf, 6)),
		Top:    DequantizeLat(unpack24(buf, 9)),
		Near:   float64(unpackFloat32LE(buf, 12)),
		Far:    float64(unpackFloat32LE(buf, 16)),
	}
}

// DequantizeBBoxAny dispatches on wire length: 12 bytes is a 2D bbox, 20
// bytes is 3D (spec §4.2's column-9 discrimination rule).
func DequantizeBBoxAny(buf []byte) (geometry.BBox, *geometry.BBox3D) {
	if len(buf) == 20 {
		b3 := DequantizeBBox3D(buf)
		return geometry.BBox{}, &b3
	}
	return DequantizeBBox(buf), nil
}
