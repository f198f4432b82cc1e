// Package column implements the per-tile content-addressed column cache
// (spec §3/§4.2): ten typed columns, a deduplicating writer, and a
// random-access reader. It also hosts the Shape/Value wire codec (EncodeShape,
// DecodeShape, EncodeValue, DecodeValue in shapecodec.go), since that codec needs
// both the shape package's pure types and the column store itself — keeping
// it here avoids a shape<->column import cycle (see internal/shape's package
// doc).
package column

// ID identifies one of the ten typed columns. Its numeric value doubles as
// the column's field tag on the wire.
type ID uint8

const (
	String ID = iota
	Unsigned
	Signed
	Float
	Double
	Points
	Points3D
	Indices
	Shapes
	BBox
)

// IDFromTag maps a wire field tag to a column ID, falling back to String
// for any value outside the documented 0..9 range (spec §4.2: "Unknown
// column ids map to String (lenient)" — see SPEC_FULL.md 4.6 for why this
// follows the spec text rather than the original implementation's panic).
func IDFromTag(tag int) ID {
	if tag < 0 || tag > int(BBox) {
		return String
	}
	return ID(tag)
}
