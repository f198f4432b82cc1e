package wire

// Zigzag32 maps a signed 32-bit integer to an unsigned one so that small
// magnitudes (positive or negative) produce small varints: 0,-1,1,-2,2 -> 0,1,2,3,4.
func Zigzag32(v int32) uint32 {
	return (uint32(v) << 1) ^ uint32(v>>31)
}

// Zagzig32 inverts Zigzag32.
func Zagzig32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// Zigzag64 is the 64-bit analog of Zigzag32, used for the Signed column and
// for the legacy Mapbox Int/SInt value kinds.
func Zigzag64(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// Zagzig64 inverts Zigzag64.
func Zagzig64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
