package column

import (
	"github.com/tilekiln/ovtile/internal/codec"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Writer is the per-tile column cache writer (spec §4.2). All Add* methods
// are dedup-on-insert: an equal value returns the index assigned at first
// insertion.
type Writer struct {
	strings  *seqColumn[string]
	unsigned *seqColumn[uint64]
	signed   *seqColumn[int64]
	float32s *seqColumn[float32]
	float64s *seqColumn[float64]
	points   *seqColumn[[]geometry.Point]
	points3d *seqColumn[[]geometry.Point3D]
	indices  *seqColumn[[]uint32]
	shapes   *seqColumn[[]uint64]
	bboxes   *seqColumn[[]byte]
}

// NewWriter returns an empty column cache writer.
func NewWriter() *Writer {
	return &Writer{
		strings:  newSeqColumn(stringKey),
		unsigned: newSeqColumn(u64Key),
		signed:   newSeqColumn(i64Key),
		float32s: newSeqColumn(f32Key),
		float64s: newSeqColumn(f64Key),
		points:   newSeqColumn(pointsKey),
		points3d: newSeqColumn(points3DKey),
		indices:  newSeqColumn(indicesKey),
		shapes:   newSeqColumn(shapesKey),
		bboxes:   newSeqColumn(bytesKey),
	}
}

func (w *Writer) AddString(s string) uint64        { return uint64(w.strings.add(s)) }
func (w *Writer) AddU64(v uint64) uint64            { return uint64(w.unsigned.add(v)) }
func (w *Writer) AddI64(v int64) uint64             { return uint64(w.signed.add(v)) }
func (w *Writer) AddF32(v float32) uint64           { return uint64(w.float32s.add(v)) }
func (w *Writer) AddF64(v float64) uint64           { return uint64(w.float64s.add(v)) }
func (w *Writer) AddPoints(p []geometry.Point) uint64 {
	return uint64(w.points.add(p))
}
func (w *Writer) AddPoints3D(p []geometry.Point3D) uint64 {
	return uint64(w.points3d.add(p))
}
func (w *Writer) AddIndices(v []uint32) uint64 { return uint64(w.indices.add(v)) }
func (w *Writer) AddShapes(v []uint64) uint64  { return uint64(w.shapes.add(v)) }

// AppendShapes always allocates a new index, never deduplicating. The
// shape/value encoders (EncodeShape, EncodeValue) use AddShapes instead, so
// two textually identical encoded streams share one Shapes-column entry
// (dedup is per entire stream, not per sub-tree). AppendShapes exists for
// callers that need a guaranteed-fresh slot.
func (w *Writer) AppendShapes(v []uint64) uint64 { return uint64(w.shapes.append(v)) }

func (w *Writer) AddBBox(b geometry.BBox) uint64 {
	return uint64(w.bboxes.add(codec.QuantizeBBox(b)))
}

func (w *Writer) AddBBox3D(b geometry.BBox3D) uint64 {
	return uint64(w.bboxes.add(codec.QuantizeBBox3D(b)))
}

// Encode serializes the cache to its wire form: for each column id 0..9, in
// order, every entry in insertion order as a (column-id, entry) field pair
// (spec §4.2/§4.6).
func (w *Writer) Encode() []byte {
	out := wire.NewWriter()
	for _, s := range w.strings.order {
		out.WriteStringField(int(String), s)
	}
	for _, v := range w.unsigned.order {
		out.WriteVarintField(int(Unsigned), v)
	}
	for _, v := range w.signed.order {
		out.WriteSVarintField(int(Signed), v)
	}
	for _, v := range w.float32s.order {
		out.WriteFixed32Field(int(Float), mustFloat32Bits(v))
	}
	for _, v := range w.float64s.order {
		out.WriteFixed64Field(int(Double), mustFloat64Bits(v))
	}
	for _, p := range w.points.order {
		out.WritePackedVarintField(int(Points), codec.WeaveDeltaEncodeArray(p))
	}
	for _, p := range w.points3d.order {
		out.WritePackedVarintField(int(Points3D), codec.WeaveDeltaEncode3DArray(p))
	}
	for _, v := range w.indices.order {
		out.WritePackedVarintField(int(Indices), codec.DeltaEncodeArray(v))
	}
	for _, v := range w.shapes.order {
		out.WritePackedVarintField(int(Shapes), v)
	}
	for _, b := range w.bboxes.order {
		out.WriteBytesField(int(BBox), b)
	}
	return out.Bytes()
}
