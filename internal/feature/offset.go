package feature

import "math"

// offsetScale trades offset precision for a compact varint: a dash-pattern
// phase offset only needs millimeter-ish precision relative to tile units.
const offsetScale = 1_000.0

// EncodeOffset packs a line's dash-phase offset into a uint32.
func EncodeOffset(offset float64) uint32 {
	return uint32(math.Round(offset * offsetScale))
}

// DecodeOffset inverts EncodeOffset.
func DecodeOffset(v uint32) float64 {
	return float64(v) / offsetScale
}
