package column

import "math"

func mustFloat32Bits(v float32) uint32 { return math.Float32bits(v) }

func mustFloat64Bits(v float64) uint64 { return math.Float64bits(v) }
