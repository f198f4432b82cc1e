package shape

// ShapeCursor and ValueCursor model the two traversal directions the
// original implementation uses over the flat stream of stream values
// stored in the Shapes column (spec §3, column id 8). Shape decode walks
// its store back-to-front (the original pops from the end of a Vec);
// Value decode — and every Array length read — walks front-to-back (the
// original removes from the front). This asymmetry is intentional and
// documented in SPEC_FULL.md 4.2; collapsing these into one cursor type
// would silently change decode order.

// ShapeCursor consumes a []uint64 from the back (LIFO), used only for
// Shape decode.
type ShapeCursor struct {
	data []uint64
	end  int
}

// NewShapeCursor wraps data for back-to-front consumption.
func NewShapeCursor(data []uint64) *ShapeCursor {
	return &ShapeCursor{data: data, end: len(data)}
}

// Pop removes and returns the current last element, or ok=false if empty.
func (c *ShapeCursor) Pop() (uint64, bool) {
	if c.end == 0 {
		return 0, false
	}
	c.end--
	return c.data[c.end], true
}

// ValueCursor consumes a []uint64 from the front (FIFO), used for Value
// decode and for Array element-count reads.
type ValueCursor struct {
	data []uint64
	pos  int
}

// NewValueCursor wraps data for front-to-back consumption.
func NewValueCursor(data []uint64) *ValueCursor {
	return &ValueCursor{data: data}
}

// Pop removes and returns the current first element, or ok=false if empty.
func (c *ValueCursor) Pop() (uint64, bool) {
	if c.pos >= len(c.data) {
		return 0, false
	}
	v := c.data[c.pos]
	c.pos++
	return v, true
}

// Remaining reports how many elements are left to consume.
func (c *ValueCursor) Remaining() int {
	return len(c.data) - c.pos
}
