package column

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/tilekiln/ovtile/internal/geometry"
)

// seqColumn is a dedup-on-insert, insertion-ordered store: a value's first
// insertion assigns it the column's next index (len(order) at that
// moment); subsequent insertions of an equal value return that same index
// and bump count. Per spec §4.2 and Design Note 9.3, emission always
// follows this insertion order — frequency-sorting is a deferred,
// non-required optimization the naive writer need not implement.
type seqColumn[T any] struct {
	keyFn func(T) string
	index map[string]int
	order []T
	count []int
}

func newSeqColumn[T any](keyFn func(T) string) *seqColumn[T] {
	return &seqColumn[T]{keyFn: keyFn, index: map[string]int{}}
}

func (c *seqColumn[T]) add(v T) int {
	k := c.keyFn(v)
	if idx, ok := c.index[k]; ok {
		c.count[idx]++
		return idx
	}
	idx := len(c.order)
	c.order = append(c.order, v)
	c.count = append(c.count, 1)
	c.index[k] = idx
	return idx
}

func (c *seqColumn[T]) get(idx int) (T, bool) {
	var zero T
	if idx < 0 || idx >= len(c.order) {
		return zero, false
	}
	return c.order[idx], true
}

func (c *seqColumn[T]) append(v T) int {
	idx := len(c.order)
	c.order = append(c.order, v)
	c.count = append(c.count, 1)
	return idx
}

func (c *seqColumn[T]) len() int { return len(c.order) }

// normalizeF32 collapses +0.0/-0.0 to the same key and canonicalizes NaN to
// a single bit pattern, so float columns have a total order suitable for a
// dedup key rather than IEEE's partial order (spec Design Note 9.4).
func normalizeF32(v float32) uint32 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(float64(v)) {
		return 0x7fc00000
	}
	return math.Float32bits(v)
}

func normalizeF64(v float64) uint64 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(v) {
		return 0x7ff8000000000000
	}
	return math.Float64bits(v)
}

func stringKey(s string) string { return s }

func u64Key(v uint64) string { return strconv.FormatUint(v, 36) }

func i64Key(v int64) string { return strconv.FormatInt(v, 36) }

func f32Key(v float32) string { return strconv.FormatUint(uint64(normalizeF32(v)), 36) }

func f64Key(v float64) string { return strconv.FormatUint(normalizeF64(v), 36) }

// pointsKey serializes a point sequence's coordinates (not its M-values,
// per geometry.Point.Equal/Less) into a byte string suitable as a map key.
func pointsKey(points []geometry.Point) string {
	buf := make([]byte, len(points)*8)
	for i, p := range points {
		binary.BigEndian.PutUint32(buf[i*8:], uint32(p.X))
		binary.BigEndian.PutUint32(buf[i*8+4:], uint32(p.Y))
	}
	return string(buf)
}

func points3DKey(points []geometry.Point3D) string {
	buf := make([]byte, len(points)*12)
	for i, p := range points {
		binary.BigEndian.PutUint32(buf[i*12:], uint32(p.X))
		binary.BigEndian.PutUint32(buf[i*12+4:], uint32(p.Y))
		binary.BigEndian.PutUint32(buf[i*12+8:], uint32(p.Z))
	}
	return string(buf)
}

func indicesKey(vs []uint32) string {
	buf := make([]byte, len(vs)*4)
	for i, v := range vs {
		binary.BigEndian.PutUint32(buf[i*4:], v)
	}
	return string(buf)
}

func shapesKey(vs []uint64) string {
	buf := make([]byte, len(vs)*8)
	for i, v := range vs {
		binary.BigEndian.PutUint64(buf[i*8:], v)
	}
	return string(buf)
}

func bytesKey(b []byte) string { return string(b) }
